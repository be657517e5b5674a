package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

type Config struct {
	Address    string `split_words:"true" default:"localhost:19530"`
	Username   string `split_words:"true"`
	Password   string `split_words:"true"`
	Database   string `split_words:"true"`
	Collection string `split_words:"true" default:"polis"`
	Timeout    int    `split_words:"true" default:"10"`
}

// New connects to Milvus using the configured address and credentials.
func (c *Config) New() (*milvusclient.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.Timeout)*time.Second)
	defer cancel()

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  c.Address,
		Username: c.Username,
		Password: c.Password,
		DBName:   c.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}
	return client, nil
}
