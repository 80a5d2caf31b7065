package providers

import (
	"context"
	"errors"
)

// WithImageFallback composes two providers: text requests go to primary,
// and image requests fall through to imager when primary reports
// ErrImageUnsupported. A nil imager leaves primary's behavior unchanged.
func WithImageFallback(primary, imager Provider) Provider {
	return &imageFallback{primary: primary, imager: imager}
}

type imageFallback struct {
	primary Provider
	imager  Provider
}

func (f *imageFallback) Name() string { return f.primary.Name() }

func (f *imageFallback) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	return f.primary.Complete(ctx, prompt, opts)
}

func (f *imageFallback) GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error) {
	ref, err := f.primary.GenerateImage(ctx, prompt, size, style)
	if err != nil && errors.Is(err, ErrImageUnsupported) && f.imager != nil {
		return f.imager.GenerateImage(ctx, prompt, size, style)
	}
	return ref, err
}
