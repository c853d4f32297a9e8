// Package logger builds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a sugared logger: human-readable console output in
// development, JSON in production.
func New(development bool) (*zap.SugaredLogger, error) {
	var z *zap.Logger
	var err error
	if development {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return z.Sugar(), nil
}
