package prompt

import (
	"context"
	"fmt"
	"io"
)

// DefaultsDriver answers every prompt with its default without reading
// input. Info messages go to Out when set.
type DefaultsDriver struct {
	Out io.Writer
}

var _ Driver = DefaultsDriver{}

func (DefaultsDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(cfg.Default); err != nil {
			return "", fmt.Errorf("prompt: default for %q rejected: %w", cfg.Message, err)
		}
	}
	return cfg.Default, nil
}

func (DefaultsDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return cfg.Default, nil
}

func (DefaultsDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(cfg.Options) == 0 {
		return 0, ErrNoOptions
	}
	if cfg.DefaultIndex < 0 || cfg.DefaultIndex >= len(cfg.Options) {
		return 0, nil
	}
	return cfg.DefaultIndex, nil
}

func (DefaultsDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []int
	for _, idx := range cfg.Defaults {
		if idx >= 0 && idx < len(cfg.Options) {
			out = append(out, idx)
		}
	}
	return out, nil
}

func (d DefaultsDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Out == nil {
		return nil
	}
	_, err := fmt.Fprintln(d.Out, msg)
	return err
}
