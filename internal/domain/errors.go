package domain

import "errors"

// Recoverable conditions. All of these are handled locally and surfaced as
// state or fallbacks; none should unwind a request.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnknownTheme        = errors.New("unknown theme")
	ErrTemplateLoadFailed  = errors.New("template load failed")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidQuantity     = errors.New("invalid quantity")
)
