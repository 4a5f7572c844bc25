package domain

import "errors"

var (
	// ErrFoodNotFound is returned when no provider record exists for an id
	ErrFoodNotFound = errors.New("food not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidBarcode is returned for barcodes outside the 8-14 digit range
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrProviderNotConfigured is returned when a provider's credential is unset
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrProviderFailure is returned when an upstream provider request fails
	ErrProviderFailure = errors.New("provider request failed")

	// ErrStoreLoad is returned when the flat-file nutrient store cannot be indexed
	ErrStoreLoad = errors.New("nutrient store load failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
