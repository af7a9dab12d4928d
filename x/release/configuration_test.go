package release

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestConfigurationValidate(t *testing.T) {
	member := weavetest.NewCondition()

	cases := map[string]struct {
		c    Configuration
		errs map[string]*errors.Error
	}{
		"all good": {
			c: Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    weavetest.NewCondition().Address(),
				Members: []weave.Address{
					weavetest.NewCondition().Address(),
					weavetest.NewCondition().Address(),
					weavetest.NewCondition().Address(),
				},
				Threshold: 3,
			},
			errs: map[string]*errors.Error{
				"Metadata":  nil,
				"Owner":     nil,
				"Members":   nil,
				"Threshold": nil,
			},
		},
		"certain fields are required": {
			c: Configuration{},
			errs: map[string]*errors.Error{
				"Metadata":  errors.ErrMetadata,
				"Owner":     errors.ErrEmpty,
				"Members":   errors.ErrEmpty,
				"Threshold": errors.ErrInput,
			},
		},
		"members must be unique": {
			c: Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    weavetest.NewCondition().Address(),
				Members: []weave.Address{
					member.Address(),
					member.Address(),
				},
				Threshold: 2,
			},
			errs: map[string]*errors.Error{
				"Members": errors.ErrDuplicate,
			},
		},
		"threshold cannot exceed the member count": {
			c: Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    weavetest.NewCondition().Address(),
				Members: []weave.Address{
					weavetest.NewCondition().Address(),
					weavetest.NewCondition().Address(),
				},
				Threshold: 3,
			},
			errs: map[string]*errors.Error{
				"Threshold": errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.c.Validate()
			for field, wantErr := range tc.errs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}
