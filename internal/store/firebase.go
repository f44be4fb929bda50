package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// FirebaseStore wraps the Firebase Storage bucket holding the sign
// dictionary clips
type FirebaseStore struct {
	bucket *storage.BucketHandle
}

// NewFirebaseStore creates a store backed by the given Firebase Storage
// bucket, authenticating with a service account credentials file
func NewFirebaseStore(ctx context.Context, credentialsFile, bucketName string) (*FirebaseStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		StorageBucket: bucketName,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %v", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %v", bucketName, err)
	}

	return &FirebaseStore{bucket: bucket}, nil
}

// List returns the names of all objects under the given prefix
func (s *FirebaseStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %v", prefix, err)
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

// Exists reports whether the named object is present in the bucket
func (s *FirebaseStore) Exists(ctx context.Context, object string) (bool, error) {
	_, err := s.bucket.Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %v", object, err)
	}
	return true, nil
}

// Download copies the named object to the destination file path
func (s *FirebaseStore) Download(ctx context.Context, object, dest string) error {
	r, err := s.bucket.Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to open object %s: %v", object, err)
	}
	defer r.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to write %s: %v", dest, err)
	}

	return nil
}
