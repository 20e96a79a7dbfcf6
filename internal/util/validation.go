package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors flattens binding failures into a field -> message map for
// 400 responses. Non-validator errors get a single generic entry.
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = "invalid request body"
		return out
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "email":
			out[field] = "must be a valid email"
		case "min":
			out[field] = fmt.Sprintf("must be at least %s characters long", fe.Param())
		case "oneof":
			out[field] = fmt.Sprintf("must be one of: %s", fe.Param())
		case "url":
			out[field] = "must be a valid URL"
		default:
			out[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}

	return out
}
