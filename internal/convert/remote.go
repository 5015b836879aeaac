package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Converter = (*Remote)(nil)

// Remote converts certificates through an external conversion API:
// POST <baseURL>/api/convert with a bearer token and a JSON body of
// {content, format}, answered with the converted binary.
type Remote struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRemote creates an API-backed converter. timeout bounds the whole
// request including the response body download.
func NewRemote(baseURL, apiKey string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// convertRequest is the API request body.
type convertRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

// Convert posts the document to the conversion API and spools the streamed
// response through a temporary file before returning it. The temporary file
// is removed on every return path.
func (r *Remote) Convert(ctx context.Context, doc []byte, format model.OutputFormat) ([]byte, error) {
	if format == model.FormatSVG {
		return doc, nil
	}

	body, err := json.Marshal(convertRequest{Content: string(doc), Format: string(format)})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", driven.ErrConversionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/convert", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", driven.ErrConversionFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrConversionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: conversion API returned %s", driven.ErrConversionFailed, resp.Status)
	}

	tmp, err := os.CreateTemp("", "certhost-*."+string(format))
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", driven.ErrConversionFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: download result: %w", driven.ErrConversionFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: close temp file: %w", driven.ErrConversionFailed, err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: read temp file: %w", driven.ErrConversionFailed, err)
	}

	return data, nil
}
