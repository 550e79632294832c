package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug string `validate:"slug"`
	Key  string `validate:"settingkey"`
}

func TestRegisteredTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Struct(sample{Slug: "north-wing", Key: "department_label"}))
	assert.NoError(t, v.Struct(sample{Slug: "", Key: "housing.max_nights"}))

	err := v.Struct(sample{Slug: "North Wing", Key: "ok"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "slug", verrs[0].Tag())
	assert.Contains(t, FormatFieldError(verrs[0]), "lowercase")

	assert.Error(t, v.Struct(sample{Key: "Bad-Key"}))
}

func TestValidSettingKey(t *testing.T) {
	assert.True(t, ValidSettingKey("a.b_c"))
	assert.False(t, ValidSettingKey(""))
	assert.False(t, ValidSettingKey(".lead"))
	assert.False(t, ValidSettingKey("trail."))
	assert.False(t, ValidSettingKey("UPPER"))
}
