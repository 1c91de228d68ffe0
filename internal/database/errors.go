package database

import (
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

// SQLSTATE codes that are worth another attempt. Everything else, including
// constraint violations and sql.ErrNoRows, is permanent.
var retryableCodes = map[pq.ErrorCode]ErrorClass{
	"40001": ErrorClassSerialization,
	"40P01": ErrorClassDeadlock,
	"55P03": ErrorClassTransient,
}

func ClassifyError(err error) ErrorClass {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if class, ok := retryableCodes[pqErr.Code]; ok {
			return class
		}
	}
	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	return ClassifyError(err) != ErrorClassPermanent
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrReviewInvalid   = errors.New("invalid review")
	ErrInvalidCursor   = errors.New("invalid cursor")
)
