package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Every field is optional; the Get* accessors supply the built-in default
// for fields the JSON file leaves out. Lengths are millimetres, speeds
// mm/s, accelerations mm/s² and plain float durations are seconds.
type TuningConfig struct {
	// Clock synchronisation
	SyncBufferSize       *int     `json:"sync_buffer_size,omitempty"`
	SyncResyncThreshold  *string  `json:"sync_resync_threshold,omitempty"`  // duration string like "300ms"
	SyncSettledThreshold *string  `json:"sync_settled_threshold,omitempty"` // duration string like "100us"
	MinBallConfidence    *float64 `json:"min_ball_confidence,omitempty"`
	MinRobotConfidence   *float64 `json:"min_robot_confidence,omitempty"`
	RestartFrameGap      *int     `json:"restart_frame_gap,omitempty"`

	// State estimation
	FilterCycle           *string  `json:"filter_cycle,omitempty"` // duration string like "16ms"
	LookaheadStep         *string  `json:"lookahead_step,omitempty"`
	ProcessNoisePos       *float64 `json:"process_noise_pos,omitempty"`
	ProcessNoiseVel       *float64 `json:"process_noise_vel,omitempty"`
	ProcessNoiseAcc       *float64 `json:"process_noise_acc,omitempty"`
	ProcessNoiseAngle     *float64 `json:"process_noise_angle,omitempty"`
	ProcessNoiseAngVel    *float64 `json:"process_noise_ang_vel,omitempty"`
	MeasurementNoisePos   *float64 `json:"measurement_noise_pos,omitempty"`
	MeasurementNoiseAngle *float64 `json:"measurement_noise_angle,omitempty"`
	OcclusionCovInflation *float64 `json:"occlusion_cov_inflation,omitempty"`
	MaxPredictDt          *float64 `json:"max_predict_dt,omitempty"`
	MaxCovarianceDiag     *float64 `json:"max_covariance_diag,omitempty"`
	MinInnovationRCond    *float64 `json:"min_innovation_rcond,omitempty"`

	// Ball physics
	BallRadius             *float64 `json:"ball_radius,omitempty"`
	BallAccRoll            *float64 `json:"ball_acc_roll,omitempty"`
	ChipDampingXYFirstHop  *float64 `json:"chip_damping_xy_first_hop,omitempty"`
	ChipDampingXYOtherHops *float64 `json:"chip_damping_xy_other_hops,omitempty"`
	ChipDampingZ           *float64 `json:"chip_damping_z,omitempty"`
	MinHopHeight           *float64 `json:"min_hop_height,omitempty"`
	MaxInterceptableHeight *float64 `json:"max_interceptable_height,omitempty"`

	// Collisions
	WallRestitution  *float64 `json:"wall_restitution,omitempty"`
	RobotRestitution *float64 `json:"robot_restitution,omitempty"`
	DribbleDamping   *float64 `json:"dribble_damping,omitempty"`
	DribblerContact  *float64 `json:"dribbler_contact,omitempty"`

	// Kick solver
	KickSeedOffset    *float64 `json:"kick_seed_offset,omitempty"`
	KickInitialStep   *float64 `json:"kick_initial_step,omitempty"`
	KickTolerance     *float64 `json:"kick_tolerance,omitempty"`
	KickMaxIterations *int     `json:"kick_max_iterations,omitempty"`
	KickMaxOffset     *float64 `json:"kick_max_offset,omitempty"`
	MinKickSpeed      *float64 `json:"min_kick_speed,omitempty"`
	MaxKickSpeed      *float64 `json:"max_kick_speed,omitempty"`
	MaxChipAngleDeg   *float64 `json:"max_chip_angle_deg,omitempty"`

	// Robots and world model
	RobotMaxVel      *float64 `json:"robot_max_vel,omitempty"`
	RobotMaxAcc      *float64 `json:"robot_max_acc,omitempty"`
	RobotReaction    *float64 `json:"robot_reaction,omitempty"`
	RobotRadius      *float64 `json:"robot_radius,omitempty"`
	CenterToDribbler *float64 `json:"center_to_dribbler,omitempty"`
	BallGate         *float64 `json:"ball_gate,omitempty"`
	KickSpeedJump    *float64 `json:"kick_speed_jump,omitempty"`
	KickWindowSize   *int     `json:"kick_window_size,omitempty"`
	MaxRobotMisses   *int     `json:"max_robot_misses,omitempty"`
	MaxBallMisses    *int     `json:"max_ball_misses,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Every accessor then yields its built-in default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded; intended for binaries and test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SyncBufferSize != nil && *c.SyncBufferSize < 1 {
		return fmt.Errorf("sync_buffer_size must be at least 1, got %d", *c.SyncBufferSize)
	}

	for name, v := range map[string]*string{
		"sync_resync_threshold":  c.SyncResyncThreshold,
		"sync_settled_threshold": c.SyncSettledThreshold,
		"filter_cycle":           c.FilterCycle,
		"lookahead_step":         c.LookaheadStep,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, *v)
		}
	}

	for name, v := range map[string]*float64{
		"chip_damping_xy_first_hop":  c.ChipDampingXYFirstHop,
		"chip_damping_xy_other_hops": c.ChipDampingXYOtherHops,
		"chip_damping_z":             c.ChipDampingZ,
		"wall_restitution":           c.WallRestitution,
		"robot_restitution":          c.RobotRestitution,
		"dribble_damping":            c.DribbleDamping,
		"min_ball_confidence":        c.MinBallConfidence,
		"min_robot_confidence":       c.MinRobotConfidence,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	if c.BallAccRoll != nil && *c.BallAccRoll >= 0 {
		return fmt.Errorf("ball_acc_roll must be negative, got %f", *c.BallAccRoll)
	}
	if c.KickTolerance != nil && *c.KickTolerance <= 0 {
		return fmt.Errorf("kick_tolerance must be positive, got %f", *c.KickTolerance)
	}
	if c.KickMaxIterations != nil && *c.KickMaxIterations < 1 {
		return fmt.Errorf("kick_max_iterations must be at least 1, got %d", *c.KickMaxIterations)
	}
	if c.KickWindowSize != nil && *c.KickWindowSize < 2 {
		return fmt.Errorf("kick_window_size must be at least 2, got %d", *c.KickWindowSize)
	}
	if c.MaxRobotMisses != nil && *c.MaxRobotMisses < 0 {
		return fmt.Errorf("max_robot_misses must be non-negative, got %d", *c.MaxRobotMisses)
	}
	if c.MaxBallMisses != nil && *c.MaxBallMisses < 0 {
		return fmt.Errorf("max_ball_misses must be non-negative, got %d", *c.MaxBallMisses)
	}
	if c.RobotMaxVel != nil && *c.RobotMaxVel <= 0 {
		return fmt.Errorf("robot_max_vel must be positive, got %f", *c.RobotMaxVel)
	}
	if c.RobotMaxAcc != nil && *c.RobotMaxAcc <= 0 {
		return fmt.Errorf("robot_max_acc must be positive, got %f", *c.RobotMaxAcc)
	}

	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}

// GetSyncBufferSize returns the sync_buffer_size value or the default.
func (c *TuningConfig) GetSyncBufferSize() int {
	if c.SyncBufferSize == nil {
		return 30
	}
	return *c.SyncBufferSize
}

// GetSyncResyncThreshold returns the clock difference that triggers a resync.
func (c *TuningConfig) GetSyncResyncThreshold() time.Duration {
	return durationOr(c.SyncResyncThreshold, 300*time.Millisecond)
}

// GetSyncSettledThreshold returns the clock difference below which a resync ends.
func (c *TuningConfig) GetSyncSettledThreshold() time.Duration {
	return durationOr(c.SyncSettledThreshold, 100*time.Microsecond)
}

// GetMinBallConfidence returns the min_ball_confidence value or the default.
func (c *TuningConfig) GetMinBallConfidence() float64 {
	if c.MinBallConfidence == nil {
		return 0.1
	}
	return *c.MinBallConfidence
}

// GetMinRobotConfidence returns the min_robot_confidence value or the default.
func (c *TuningConfig) GetMinRobotConfidence() float64 {
	if c.MinRobotConfidence == nil {
		return 0.1
	}
	return *c.MinRobotConfidence
}

// GetRestartFrameGap returns the restart_frame_gap value or the default.
func (c *TuningConfig) GetRestartFrameGap() int {
	if c.RestartFrameGap == nil {
		return 100
	}
	return *c.RestartFrameGap
}

// GetFilterCycle returns the nominal filter period used by keep-alive steps.
func (c *TuningConfig) GetFilterCycle() time.Duration {
	return durationOr(c.FilterCycle, 16*time.Millisecond)
}

// GetLookaheadStep returns the horizon spacing between lookahead indices.
func (c *TuningConfig) GetLookaheadStep() time.Duration {
	return durationOr(c.LookaheadStep, 10*time.Millisecond)
}

// GetProcessNoisePos returns the process_noise_pos value or the default.
func (c *TuningConfig) GetProcessNoisePos() float64 {
	if c.ProcessNoisePos == nil {
		return 100.0
	}
	return *c.ProcessNoisePos
}

// GetProcessNoiseVel returns the process_noise_vel value or the default.
func (c *TuningConfig) GetProcessNoiseVel() float64 {
	if c.ProcessNoiseVel == nil {
		return 1e6
	}
	return *c.ProcessNoiseVel
}

// GetProcessNoiseAcc returns the process_noise_acc value or the default.
func (c *TuningConfig) GetProcessNoiseAcc() float64 {
	if c.ProcessNoiseAcc == nil {
		return 1e8
	}
	return *c.ProcessNoiseAcc
}

// GetProcessNoiseAngle returns the process_noise_angle value or the default.
func (c *TuningConfig) GetProcessNoiseAngle() float64 {
	if c.ProcessNoiseAngle == nil {
		return 0.01
	}
	return *c.ProcessNoiseAngle
}

// GetProcessNoiseAngVel returns the process_noise_ang_vel value or the default.
func (c *TuningConfig) GetProcessNoiseAngVel() float64 {
	if c.ProcessNoiseAngVel == nil {
		return 10.0
	}
	return *c.ProcessNoiseAngVel
}

// GetMeasurementNoisePos returns the measurement_noise_pos value or the default.
func (c *TuningConfig) GetMeasurementNoisePos() float64 {
	if c.MeasurementNoisePos == nil {
		return 25.0
	}
	return *c.MeasurementNoisePos
}

// GetMeasurementNoiseAngle returns the measurement_noise_angle value or the default.
func (c *TuningConfig) GetMeasurementNoiseAngle() float64 {
	if c.MeasurementNoiseAngle == nil {
		return 0.001
	}
	return *c.MeasurementNoiseAngle
}

// GetOcclusionCovInflation returns the occlusion_cov_inflation value or the default.
func (c *TuningConfig) GetOcclusionCovInflation() float64 {
	if c.OcclusionCovInflation == nil {
		return 50.0
	}
	return *c.OcclusionCovInflation
}

// GetMaxPredictDt returns the max_predict_dt value or the default.
func (c *TuningConfig) GetMaxPredictDt() float64 {
	if c.MaxPredictDt == nil {
		return 0.1
	}
	return *c.MaxPredictDt
}

// GetMaxCovarianceDiag returns the max_covariance_diag value or the default.
func (c *TuningConfig) GetMaxCovarianceDiag() float64 {
	if c.MaxCovarianceDiag == nil {
		return 1e10
	}
	return *c.MaxCovarianceDiag
}

// GetMinInnovationRCond returns the min_innovation_rcond value or the default.
func (c *TuningConfig) GetMinInnovationRCond() float64 {
	if c.MinInnovationRCond == nil {
		return 1e-12
	}
	return *c.MinInnovationRCond
}

// GetBallRadius returns the ball_radius value or the default.
func (c *TuningConfig) GetBallRadius() float64 {
	if c.BallRadius == nil {
		return 21.5
	}
	return *c.BallRadius
}

// GetBallAccRoll returns the ball_acc_roll value or the default.
func (c *TuningConfig) GetBallAccRoll() float64 {
	if c.BallAccRoll == nil {
		return -260.0
	}
	return *c.BallAccRoll
}

// GetChipDampingXYFirstHop returns the chip_damping_xy_first_hop value or the default.
func (c *TuningConfig) GetChipDampingXYFirstHop() float64 {
	if c.ChipDampingXYFirstHop == nil {
		return 0.75
	}
	return *c.ChipDampingXYFirstHop
}

// GetChipDampingXYOtherHops returns the chip_damping_xy_other_hops value or the default.
func (c *TuningConfig) GetChipDampingXYOtherHops() float64 {
	if c.ChipDampingXYOtherHops == nil {
		return 0.95
	}
	return *c.ChipDampingXYOtherHops
}

// GetChipDampingZ returns the chip_damping_z value or the default.
func (c *TuningConfig) GetChipDampingZ() float64 {
	if c.ChipDampingZ == nil {
		return 0.6
	}
	return *c.ChipDampingZ
}

// GetMinHopHeight returns the min_hop_height value or the default.
func (c *TuningConfig) GetMinHopHeight() float64 {
	if c.MinHopHeight == nil {
		return 10.0
	}
	return *c.MinHopHeight
}

// GetMaxInterceptableHeight returns the max_interceptable_height value or the default.
func (c *TuningConfig) GetMaxInterceptableHeight() float64 {
	if c.MaxInterceptableHeight == nil {
		return 150.0
	}
	return *c.MaxInterceptableHeight
}

// GetWallRestitution returns the wall_restitution value or the default.
func (c *TuningConfig) GetWallRestitution() float64 {
	if c.WallRestitution == nil {
		return 0.6
	}
	return *c.WallRestitution
}

// GetRobotRestitution returns the robot_restitution value or the default.
func (c *TuningConfig) GetRobotRestitution() float64 {
	if c.RobotRestitution == nil {
		return 0.4
	}
	return *c.RobotRestitution
}

// GetDribbleDamping returns the dribble_damping value or the default.
func (c *TuningConfig) GetDribbleDamping() float64 {
	if c.DribbleDamping == nil {
		return 0.8
	}
	return *c.DribbleDamping
}

// GetDribblerContact returns the dribbler_contact value or the default.
func (c *TuningConfig) GetDribblerContact() float64 {
	if c.DribblerContact == nil {
		return 5.0
	}
	return *c.DribblerContact
}

// GetKickSeedOffset returns the kick_seed_offset value or the default.
func (c *TuningConfig) GetKickSeedOffset() float64 {
	if c.KickSeedOffset == nil {
		return 0.1
	}
	return *c.KickSeedOffset
}

// GetKickInitialStep returns the kick_initial_step value or the default.
func (c *TuningConfig) GetKickInitialStep() float64 {
	if c.KickInitialStep == nil {
		return 0.1
	}
	return *c.KickInitialStep
}

// GetKickTolerance returns the kick_tolerance value or the default.
func (c *TuningConfig) GetKickTolerance() float64 {
	if c.KickTolerance == nil {
		return 1e-4
	}
	return *c.KickTolerance
}

// GetKickMaxIterations returns the kick_max_iterations value or the default.
func (c *TuningConfig) GetKickMaxIterations() int {
	if c.KickMaxIterations == nil {
		return 40
	}
	return *c.KickMaxIterations
}

// GetKickMaxOffset returns the kick_max_offset value or the default.
func (c *TuningConfig) GetKickMaxOffset() float64 {
	if c.KickMaxOffset == nil {
		return 0.5
	}
	return *c.KickMaxOffset
}

// GetMinKickSpeed returns the min_kick_speed value or the default.
func (c *TuningConfig) GetMinKickSpeed() float64 {
	if c.MinKickSpeed == nil {
		return 300.0
	}
	return *c.MinKickSpeed
}

// GetMaxKickSpeed returns the max_kick_speed value or the default.
func (c *TuningConfig) GetMaxKickSpeed() float64 {
	if c.MaxKickSpeed == nil {
		return 12000.0
	}
	return *c.MaxKickSpeed
}

// GetMaxChipAngleDeg returns the max_chip_angle_deg value or the default.
func (c *TuningConfig) GetMaxChipAngleDeg() float64 {
	if c.MaxChipAngleDeg == nil {
		return 80.0
	}
	return *c.MaxChipAngleDeg
}

// GetRobotMaxVel returns the robot_max_vel value or the default.
func (c *TuningConfig) GetRobotMaxVel() float64 {
	if c.RobotMaxVel == nil {
		return 3000.0
	}
	return *c.RobotMaxVel
}

// GetRobotMaxAcc returns the robot_max_acc value or the default.
func (c *TuningConfig) GetRobotMaxAcc() float64 {
	if c.RobotMaxAcc == nil {
		return 3000.0
	}
	return *c.RobotMaxAcc
}

// GetRobotReaction returns the robot_reaction value or the default.
func (c *TuningConfig) GetRobotReaction() float64 {
	if c.RobotReaction == nil {
		return 0.1
	}
	return *c.RobotReaction
}

// GetRobotRadius returns the robot_radius value or the default.
func (c *TuningConfig) GetRobotRadius() float64 {
	if c.RobotRadius == nil {
		return 90.0
	}
	return *c.RobotRadius
}

// GetCenterToDribbler returns the center_to_dribbler value or the default.
func (c *TuningConfig) GetCenterToDribbler() float64 {
	if c.CenterToDribbler == nil {
		return 75.0
	}
	return *c.CenterToDribbler
}

// GetBallGate returns the ball_gate value or the default.
func (c *TuningConfig) GetBallGate() float64 {
	if c.BallGate == nil {
		return 500.0
	}
	return *c.BallGate
}

// GetKickSpeedJump returns the kick_speed_jump value or the default.
func (c *TuningConfig) GetKickSpeedJump() float64 {
	if c.KickSpeedJump == nil {
		return 1000.0
	}
	return *c.KickSpeedJump
}

// GetKickWindowSize returns the kick_window_size value or the default.
func (c *TuningConfig) GetKickWindowSize() int {
	if c.KickWindowSize == nil {
		return 8
	}
	return *c.KickWindowSize
}

// GetMaxRobotMisses returns the max_robot_misses value or the default.
func (c *TuningConfig) GetMaxRobotMisses() int {
	if c.MaxRobotMisses == nil {
		return 30
	}
	return *c.MaxRobotMisses
}

// GetMaxBallMisses returns the max_ball_misses value or the default.
func (c *TuningConfig) GetMaxBallMisses() int {
	if c.MaxBallMisses == nil {
		return 30
	}
	return *c.MaxBallMisses
}
