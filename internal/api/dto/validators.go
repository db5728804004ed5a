package dto

import (
	"engage-go/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册自定义校验规则：contentkind（可点赞类型）与 rootkind（可评论的根类型）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("contentkind", func(fl validator.FieldLevel) bool {
		return model.ContentKind(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("rootkind", func(fl validator.FieldLevel) bool {
		return model.ContentKind(fl.Field().String()).IsRoot()
	})
}
