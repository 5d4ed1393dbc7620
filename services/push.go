package services

import (
	"context"
	"os"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// Pusher delivers a push notification to one device token.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

type FCMPusher struct {
	Client *messaging.Client
}

// NewFCMPusher builds a Firebase Cloud Messaging client from a service account file.
func NewFCMPusher(ctx context.Context, credentialsFile string) (*FCMPusher, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, errors.Wrap(err, "firebase credentials")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "error initializing Firebase app")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting Messaging client")
	}
	return &FCMPusher{Client: client}, nil
}

func (f *FCMPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	_, err := f.Client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	return err
}
