package examples

import (
	"github.com/modhost-project/modhost-go/pkg/model"
)

// ThermostatConfig contains configuration for creating a thermostat unit.
type ThermostatConfig struct {
	Name          string
	SetpointDeciC int64
	MinDeciC      int64
	MaxDeciC      int64
}

// DefaultThermostatConfig returns a sensible household configuration.
func DefaultThermostatConfig() ThermostatConfig {
	return ThermostatConfig{
		Name:          "thermostat",
		SetpointDeciC: 210,
		MinDeciC:      50,
		MaxDeciC:      300,
	}
}

// NewThermostat builds a thermostat unit with a bounded writable
// setpoint and a read-only firmware revision. It demonstrates range
// constraints and a detach hook that reads more than one parameter.
func NewThermostat(cfg ThermostatConfig) *model.Unit {
	u := model.New(model.UnitInfo{
		Name:        cfg.Name,
		Author:      "modhost project",
		Description: "A thermostat with a bounded setpoint",
		License:     "MIT",
		Version:     "1.0",
	})

	minVal, maxVal := cfg.MinDeciC, cfg.MaxDeciC
	mustAdd(u, &model.ParamMetadata{
		Name:        "setpoint",
		Access:      model.AccessReadWrite,
		Default:     cfg.SetpointDeciC,
		MinValue:    &minVal,
		MaxValue:    &maxVal,
		Unit:        "deci-celsius",
		Description: "Target temperature in tenths of a degree",
	})
	mustAdd(u, &model.ParamMetadata{
		Name:        "firmware_rev",
		Access:      model.AccessReadOnly,
		Default:     3,
		Description: "Firmware revision",
	})

	u.OnAttach(func(ctx *model.HookContext) {
		ctx.Logf("thermostat ready, setpoint %d, firmware rev %d",
			ctx.Value("setpoint"), ctx.Value("firmware_rev"))
	})
	u.OnDetach(func(ctx *model.HookContext) {
		ctx.Logf("thermostat stopped, last setpoint %d", ctx.Value("setpoint"))
	})

	return u
}
