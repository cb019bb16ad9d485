package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignora todo lo que pase de 72 bytes, así que se rechaza.
const maxPasswordBytes = 72

type passwordHasher struct {
	cost int
}

func newPasswordHasher(cost int) passwordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return passwordHasher{cost: cost}
}

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)
	}
	return nil
}

func (h passwordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := checkPasswordLength(password); err != nil {
		return "", err
	}
	hash, err := runBlocking(ctx, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(password), h.cost)
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Matches devuelve false ante cualquier discrepancia; err solo para fallas del contexto.
func (h passwordHasher) Matches(ctx context.Context, hash, password string) (bool, error) {
	err := runBlockingErr(ctx, func() error {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, err
	}
	return false, nil
}

// runBlocking ejecuta fn en otra goroutine y deja de esperar cuando ctx termina.
func runBlocking[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := fn()
		done <- result{val: val, err: err}
	}()
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}

func runBlockingErr(ctx context.Context, fn func() error) error {
	_, err := runBlocking(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
