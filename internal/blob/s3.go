package blob

import (
	"context"

	infraS3 "expdb/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration type.
type S3Config = infraS3.Config

// NewS3 constructs an S3-backed Store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// MockS3 is an S3 store backed by a fake transport, with a Seed method.
type MockS3 = infraS3.Mock

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() *MockS3 { return infraS3.NewMockForTests() }
