package physics

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

const INFINITY = math.MaxFloat64

// EPSILON is the float64 machine epsilon.
const EPSILON = 2.220446049250313e-16

const (
	// The maximum number of contact points between two convex shapes.
	MAX_MANIFOLD_POINTS = 2
	// The maximum number of vertices on a convex polygon.
	MAX_POLYGON_VERTICES = 8

	// A small length used as a collision and constraint tolerance. Usually it is
	// chosen to be numerically significant, but visually insignificant.
	LINEAR_SLOP = 0.005
	// A small angle used as a collision and constraint tolerance.
	ANGULAR_SLOP = 2.0 / 180.0 * math.Pi
	// The radius of the polygon/edge shape skin.
	POLYGON_RADIUS = 2.0 * LINEAR_SLOP

	// Maximum number of iterations of the time of impact outer loop and root finder.
	MAX_TOI_ROOT_ITERATIONS  = 50
	MAX_TOI_OUTER_ITERATIONS = 20

	// Maximum number of GJK iterations.
	MAX_GJK_ITERATIONS = 20
)

// Settings holds the tuning values a World reads while stepping. The geometric tolerances
// shared with the narrow-phase (LINEAR_SLOP, POLYGON_RADIUS) are constants.
type Settings struct {
	// Fattening margin added to leaf boxes in the broad-phase tree.
	AABBExtension float64 `yaml:"aabb_extension"`
	// Predictive multiplier applied to a proxy's displacement when it is re-inserted.
	AABBMultiplier float64 `yaml:"aabb_multiplier"`

	// Relative normal speed below which collisions are treated as inelastic.
	VelocityThreshold float64 `yaml:"velocity_threshold"`
	// Fraction of the overlap resolved per position iteration.
	Baumgarte float64 `yaml:"baumgarte"`
	// Fraction of the overlap resolved per TOI solver iteration.
	TOIBaumgarte float64 `yaml:"toi_baumgarte"`
	// Largest position correction applied to a contact in one iteration.
	MaxLinearCorrection float64 `yaml:"max_linear_correction"`
	// Largest translation a body can make in one step.
	MaxTranslation float64 `yaml:"max_translation"`
	// Largest rotation a body can make in one step.
	MaxRotation float64 `yaml:"max_rotation"`
	// Ill-conditioning limit for the two point block solver.
	MaxConditionNumber float64 `yaml:"max_condition_number"`

	TimeToSleep           float64 `yaml:"time_to_sleep"`
	LinearSleepTolerance  float64 `yaml:"linear_sleep_tolerance"`
	AngularSleepTolerance float64 `yaml:"angular_sleep_tolerance"`

	// Contacts considered by the TOI solver for one body.
	MaxTOIContacts int `yaml:"max_toi_contacts"`
	// Retries of the minimum TOI search for one body.
	MaxTOIIterations int `yaml:"max_toi_iterations"`
	// A contact stops taking part in TOI once it has been hit this many times in one step.
	MaxTOIHits int `yaml:"max_toi_hits"`
	// Iterations of the TOI push-out solver.
	TOISolverIterations int `yaml:"toi_solver_iterations"`
	// When set, non-bullet dynamic bodies are also swept against static and kinematic bodies.
	ContinuousNonBullets bool `yaml:"continuous_non_bullets"`
}

func DefaultSettings() Settings {
	return Settings{
		AABBExtension:         0.1,
		AABBMultiplier:        2.0,
		VelocityThreshold:     1.0,
		Baumgarte:             0.2,
		TOIBaumgarte:          0.75,
		MaxLinearCorrection:   0.2,
		MaxTranslation:        2.0,
		MaxRotation:           0.5 * math.Pi,
		MaxConditionNumber:    1000.0,
		TimeToSleep:           0.5,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * math.Pi,
		MaxTOIContacts:        32,
		MaxTOIIterations:      50,
		MaxTOIHits:            10,
		TOISolverIterations:   20,
	}
}

// LoadSettings reads YAML tuning values on top of DefaultSettings. Unknown keys are rejected.
func LoadSettings(r io.Reader) (Settings, error) {
	settings := DefaultSettings()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return settings, fmt.Errorf("decoding settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s Settings) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"aabb_extension", s.AABBExtension},
		{"max_linear_correction", s.MaxLinearCorrection},
		{"max_translation", s.MaxTranslation},
		{"max_rotation", s.MaxRotation},
		{"max_condition_number", s.MaxConditionNumber},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("settings: %s must be positive, got %v", p.name, p.value)
		}
	}

	if s.AABBMultiplier < 0 || s.VelocityThreshold < 0 || s.TimeToSleep < 0 ||
		s.LinearSleepTolerance < 0 || s.AngularSleepTolerance < 0 {
		return fmt.Errorf("settings: multipliers, thresholds and tolerances must not be negative")
	}
	if s.Baumgarte < 0 || s.Baumgarte > 1 || s.TOIBaumgarte < 0 || s.TOIBaumgarte > 1 {
		return fmt.Errorf("settings: baumgarte factors must be within [0, 1]")
	}
	if s.MaxTOIContacts < 1 || s.MaxTOIIterations < 1 || s.TOISolverIterations < 1 || s.MaxTOIHits < 1 {
		return fmt.Errorf("settings: TOI limits must be at least 1")
	}
	return nil
}
