package platform

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

var (
	modelPlatformType         = reflect.TypeOf(ModelPlatform(""))
	optionalModelPlatformType = reflect.TypeOf(OptionalModelPlatform{})
)

// DecodeHook normalizes string values decoded into ModelPlatform and OptionalModelPlatform fields.
// Compose it with the other hooks passed to viper.Unmarshal.
func DecodeHook() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String {
			return data, nil
		}
		raw := reflect.ValueOf(data).String()
		switch targetType {
		case modelPlatformType:
			return NewModelPlatform(raw), nil
		case optionalModelPlatformType:
			return SomeModelPlatform(raw), nil
		default:
			return data, nil
		}
	}
}
