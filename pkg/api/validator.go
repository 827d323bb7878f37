package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateStruct проверяет теги validate и приводит ошибку к читаемому виду.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, e.Param()))
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s violates %s=%s", field, e.Tag(), e.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return errors.New(strings.Join(parts, "; "))
}

func (p JoinPayload) Validate() error { return ValidateStruct(p) }
func (p AddBotPayload) Validate() error { return ValidateStruct(p) }
func (p DefendPayload) Validate() error { return ValidateStruct(p) }
func (p ForceDealPayload) Validate() error { return ValidateStruct(p) }
func (p ForceAssistantPayload) Validate() error { return ValidateStruct(p) }
func (p ForceInitialDealPayload) Validate() error { return ValidateStruct(p) }

func (p AttackPayload) Validate() error {
	if err := ValidateStruct(p); err != nil {
		return err
	}
	if p.Exchange != nil {
		if err := ValidateStruct(p.Exchange); err != nil {
			return err
		}
	}
	for _, piece := range p.Pieces {
		if piece.IllusionIndex != nil && piece.AbilityIndex != nil {
			return errors.New("piece cannot be both illusion and ability")
		}
	}
	return nil
}
