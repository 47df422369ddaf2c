// Package archive grava snapshots das grades de jantri em um bucket S3
// (ou compatível: MinIO, R2), em JSON comprimido com zstd.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/radieske/matka-risk-platform/internal/jantri"
)

var ErrDisabled = errors.New("archive: disabled")

type Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// ObjectPutter é o pedaço do *s3.Client que o Archiver usa
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot é o que vai para o bucket
type Snapshot struct {
	ID       string       `json:"id"`
	TakenAt  time.Time    `json:"takenAt"`
	Board    jantri.Board `json:"board"`
	Operator string       `json:"operator,omitempty"`
}

type Archiver struct {
	s3     ObjectPutter
	bucket string
	enc    *zstd.Encoder
	now    func() time.Time
}

func New(ctx context.Context, cfg Config) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, ErrDisabled
	}
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" {
			endpoint = "https://" + endpoint
		}
		opts = append(opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(endpoint) })
	}
	if cfg.ForcePathStyle {
		opts = append(opts, func(o *s3.Options) { o.UsePathStyle = true })
	}
	return NewWithClient(s3.NewFromConfig(awsCfg, opts...), cfg.Bucket)
}

func NewWithClient(c ObjectPutter, bucket string) (*Archiver, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	return &Archiver{s3: c, bucket: bucket, enc: enc, now: time.Now}, nil
}

// ObjectKey: jantri/{market}/{view}/{yyyy-mm-dd}/{id}.json.zst
func ObjectKey(b jantri.Board, at time.Time, id string) string {
	market := b.MarketID
	if market == "" {
		market = "all"
	}
	return fmt.Sprintf("jantri/%s/%s/%s/%s.json.zst",
		url.PathEscape(market), b.View, at.UTC().Format("2006-01-02"), id)
}

// Encode serializa e comprime o snapshot
func (a *Archiver) Encode(s Snapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return a.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Put grava a grade e devolve a chave do objeto
func (a *Archiver) Put(ctx context.Context, b jantri.Board, operator string) (string, error) {
	s := Snapshot{
		ID:       uuid.NewString(),
		TakenAt:  a.now().UTC(),
		Board:    b,
		Operator: operator,
	}
	body, err := a.Encode(s)
	if err != nil {
		return "", fmt.Errorf("archive: encode: %w", err)
	}
	key := ObjectKey(b, s.TakenAt, s.ID)
	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(body),
		ContentType:     aws.String("application/json"),
		ContentEncoding: aws.String("zstd"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: put %s: %w", key, err)
	}
	return key, nil
}
