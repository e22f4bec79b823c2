package herd

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid herd parameters")

// MemberParams are the tunables of a flock member. They are fixed once the member spawns.
type MemberParams struct {
	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`

	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`

	SeparationRadius float64 `json:"separationRadius"` // personal space
	PerceptionRadius float64 `json:"perceptionRadius"` // alignment and cohesion range

	FleeDistance float64 `json:"fleeDistance"`
	FleeStrength float64 `json:"fleeStrength"`
}

// DefaultMemberParams returns the values the herd was tuned with.
func DefaultMemberParams() MemberParams {
	return MemberParams{
		MaxSpeed:         3.5,
		MaxForce:         2.0,
		SeparationWeight: 1.5,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.0,
		SeparationRadius: 2.0,
		PerceptionRadius: 5.0,
		FleeDistance:     10.0,
		FleeStrength:     3.0,
	}
}

// Validate reports every negative or non finite parameter.
func (p MemberParams) Validate() error {
	return errors.Join(
		nonNegative("maxSpeed", p.MaxSpeed),
		nonNegative("maxForce", p.MaxForce),
		nonNegative("separationWeight", p.SeparationWeight),
		nonNegative("alignmentWeight", p.AlignmentWeight),
		nonNegative("cohesionWeight", p.CohesionWeight),
		nonNegative("separationRadius", p.SeparationRadius),
		nonNegative("perceptionRadius", p.PerceptionRadius),
		nonNegative("fleeDistance", p.FleeDistance),
		nonNegative("fleeStrength", p.FleeStrength),
	)
}

// HerderParams are the tunables of the orbiting herder.
type HerderParams struct {
	// How much further than the herd radius to circle.
	CirclingRadiusOffset float64 `json:"circlingRadiusOffset"`
	// Linear speed the orbit target should keep along the circle.
	DesiredOrbitLinearSpeed float64 `json:"desiredOrbitLinearSpeed"`
	// Angular speed bounds in radians per second.
	MinAngularSpeed float64 `json:"minAngularSpeed"`
	MaxAngularSpeed float64 `json:"maxAngularSpeed"`
	// Floor for the radius used in the angular speed calculation.
	MinRadiusForSpeedCalc float64 `json:"minRadiusForSpeedCalc"`
	// Smallest circle the herder will ever orbit.
	MinCirclingRadius float64 `json:"minCirclingRadius"`

	// Path following speed and stopping distance handed to the navigator.
	Speed            float64 `json:"speed"`
	StoppingDistance float64 `json:"stoppingDistance"`
}

// DefaultHerderParams returns the values the herder was tuned with.
func DefaultHerderParams() HerderParams {
	return HerderParams{
		CirclingRadiusOffset:    5.0,
		DesiredOrbitLinearSpeed: 5.0,
		MinAngularSpeed:         0.5,
		MaxAngularSpeed:         2 * math.Pi,
		MinRadiusForSpeedCalc:   1.0,
		MinCirclingRadius:       10.0,
		Speed:                   6.0,
		StoppingDistance:        1.0,
	}
}

// Validate reports negative values and an inverted angular speed range.
func (p HerderParams) Validate() error {
	errs := []error{
		nonNegative("circlingRadiusOffset", p.CirclingRadiusOffset),
		nonNegative("desiredOrbitLinearSpeed", p.DesiredOrbitLinearSpeed),
		nonNegative("minAngularSpeed", p.MinAngularSpeed),
		nonNegative("maxAngularSpeed", p.MaxAngularSpeed),
		nonNegative("minRadiusForSpeedCalc", p.MinRadiusForSpeedCalc),
		nonNegative("minCirclingRadius", p.MinCirclingRadius),
		nonNegative("speed", p.Speed),
		nonNegative("stoppingDistance", p.StoppingDistance),
	}
	if p.MinAngularSpeed > p.MaxAngularSpeed {
		errs = append(errs, fmt.Errorf("%w: minAngularSpeed %.3f is greater than maxAngularSpeed %.3f",
			ErrInvalidParams, p.MinAngularSpeed, p.MaxAngularSpeed))
	}
	return errors.Join(errs...)
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidParams, name, v)
	}
	return nil
}
