package betting

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/shopspring/decimal"
)

type wagerForm struct {
	PlayerName string `json:"player_name" validate:"required,max=50"`
	Category   string `json:"bet_type" validate:"required,category"`
	Amount     string `json:"amount" validate:"required,positive,wagermin,amountscale,amountmax"`
}

type jackpotForm struct {
	PlayerName string `json:"player_name" validate:"required,max=50"`
	Kind       string `json:"jackpot_type" validate:"required,jackpotkind"`
}

func newValidator(minAmount decimal.Decimal) *validator.Validate {
	v := validator.New()

	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := model.ParseCategory(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("jackpotkind", func(fl validator.FieldLevel) bool {
		_, err := model.ParseJackpotKind(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	_ = v.RegisterValidation("wagermin", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.GreaterThanOrEqual(minAmount)
	})
	_ = v.RegisterValidation("amountscale", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && model.AmountFitsScale(d)
	})
	_ = v.RegisterValidation("amountmax", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && model.AmountInRange(d)
	})
	return v
}

// formatValidationError turns validator output into field messages.
func formatValidationError(err error, minAmount decimal.Decimal) *ValidationError {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fields["request"] = "Invalid request format"
		return &ValidationError{Fields: fields}
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			fields[field] = "This field is required"
		case "max":
			fields[field] = fmt.Sprintf("Must be at most %s characters", e.Param())
		case "category":
			fields[field] = "Unknown bet"
		case "jackpotkind":
			fields[field] = "Unknown jackpot kind, expected one of: " + jackpotKindList()
		case "positive":
			fields[field] = "Must be a positive amount"
		case "wagermin":
			fields[field] = fmt.Sprintf("Must be at least %s", minAmount.String())
		case "amountscale":
			fields[field] = fmt.Sprintf("Must have at most %d decimal places", model.AmountScale)
		case "amountmax":
			fields[field] = fmt.Sprintf("Must be at most %s", model.MaxAmount.StringFixed(model.AmountScale))
		default:
			fields[field] = "Invalid value"
		}
	}
	return &ValidationError{Fields: fields}
}

func jackpotKindList() string {
	kinds := model.JackpotKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
