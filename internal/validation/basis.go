package validation

import (
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// ParseBasisParams validates the method and rounding query parameters of a basis run.
// Empty values select the given defaults.
func ParseBasisParams(method, rounding string, defaultMethod coinpool.Method, defaultRounding model.Rounding) (coinpool.Method, model.Rounding, error) {
	errors := make(map[string]string)

	m := defaultMethod
	if method != "" {
		parsed, err := coinpool.ParseMethod(method)
		if err != nil {
			errors["method"] = err.Error()
		}
		m = parsed
	}

	r := defaultRounding
	if rounding != "" {
		parsed, err := model.ParseRounding(rounding)
		if err != nil {
			errors["rounding"] = err.Error()
		}
		r = parsed
	}

	if len(errors) > 0 {
		return m, r, &Error{Fields: errors}
	}
	return m, r, nil
}
