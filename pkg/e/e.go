package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Ошибки каталога
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrProductExists   = fmt.Errorf("product with this name already exists")

	// Ошибки диалогового ядра
	ErrCartEmpty       = fmt.Errorf("cart is empty")
	ErrNoWeightedLines = fmt.Errorf("no cart lines with known weight")
	ErrOrderDelivery   = fmt.Errorf("order delivery failed")

	// 400 Bad Request
	ErrStatusBadRequest  = fmt.Errorf("bad request")
	ErrExpectedMultipart = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields     = fmt.Errorf("missing required fields")
	ErrInvalidPrice      = fmt.Errorf("invalid price")
	ErrPricePrecision    = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidWeight     = fmt.Errorf("invalid weight")
	ErrFileTooLarge      = fmt.Errorf("file too large")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
