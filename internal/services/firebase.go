package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK and returns the auth and
// storage clients. The storage bucket is used for avatar uploads.
func InitFirebase(credPath, bucket string) (*auth.Client, *storage.Client, error) {
	opt := option.WithCredentialsFile(credPath)
	conf := &firebase.Config{StorageBucket: bucket}
	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		return nil, nil, err
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		return nil, nil, err
	}

	storageClient, err := app.Storage(context.Background())
	if err != nil {
		return nil, nil, err
	}

	return authClient, storageClient, nil
}
