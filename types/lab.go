package types

// Lab is a running simulator instance with a loaded level.
type Lab interface {
	// Reset starts a new episode
	Reset() error
	// Step applies the action for numSteps frames and returns the reward
	// collected over those frames
	Step(action ActionVector, numSteps int) (float64, error)
	// Observations for the current frame, keyed by observation name
	Observations() (Observations, error)
	// WriteProperty sets a level property such as params.spawn_pose.x
	WriteProperty(key, value string) error
	Close() error
}

// LabFactory constructs a Lab running levelScript, producing the named
// observations. All config values are strings.
type LabFactory func(levelScript string, observations []string, config map[string]string) (Lab, error)

// Observation names understood by the gridmap level scripts.
const (
	ObsPlayerView      = "RGB_INTERLEAVED"
	ObsPosition        = "DEBUG.POS.TRANS"
	ObsRotation        = "DEBUG.POS.ROT"
	ObsCustomView      = "DEBUG.CUSTOM_VIEW"
	ObsGoalPosition    = "DEBUG.GOAL_POSITION"
	ObsTopDownView     = "DEBUG.TOP_DOWN_VIEW"
	ObsCleanPlayerView = "DEBUG.CAMERA_INTERLEAVED.PLAYER_VIEW"
	ObsMazeLayout      = "DEBUG.MAZE.LAYOUT"
)

// Level properties written between episodes.
const (
	PropSpawnX        = "params.spawn_pose.x"
	PropSpawnY        = "params.spawn_pose.y"
	PropSpawnTheta    = "params.spawn_pose.theta"
	PropGoalX         = "params.goal_position.x"
	PropGoalY         = "params.goal_position.y"
	PropViewX         = "params.view_pose.x"
	PropViewY         = "params.view_pose.y"
	PropViewZ         = "params.view_pose.z"
	PropViewRoll      = "params.view_pose.roll"
	PropViewPitch     = "params.view_pose.pitch"
	PropViewYaw       = "params.view_pose.yaw"
	PropTopDownHeight = "params.top_down_height"
)

// Level config keys passed at construction.
const (
	ConfigFPS             = "fps"
	ConfigWidth           = "width"
	ConfigHeight          = "height"
	ConfigEntityLayer     = "mapEntityLayer"
	ConfigVariationsLayer = "mapVariationsLayer"
	ConfigRandomSeed      = "randomSeed"
	ConfigDecalFrequency  = "decalFrequency"
	ConfigMapName         = "mapName"
)
