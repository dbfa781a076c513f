package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError describe un campo rechazado por validacion.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// bindJSON responde 400 con un mensaje por campo cuando el body no valida.
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondBindError(c, err, out)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error, out any) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			name := jsonFieldName(out, fe.StructField())
			fields = append(fields, FieldError{
				Field:   name,
				Rule:    fe.Tag(),
				Message: name + " " + validationMessage(fe.Tag(), fe.Param()),
			})
		}
		c.AbortWithStatusJSON(400, gin.H{"error": fields[0].Message, "fields": fields})
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		respondError(c, 400, "invalid JSON body")
	case errors.As(err, &typeErr):
		respondError(c, 400, fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()))
	default:
		respondError(c, 400, "invalid request")
	}
}

func jsonFieldName(out any, structField string) string {
	t := reflect.TypeOf(out)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}
	sf, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return structField
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	default:
		return "failed " + rule + " validation"
	}
}
