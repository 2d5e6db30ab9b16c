package recipe

// Recipe is an ordered list of scaffolding steps plus the gems and tools
// those steps depend on.
type Recipe struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Requires    []Tool `yaml:"requires,omitempty" json:"requires,omitempty"`
	Gems        []Gem  `yaml:"gems,omitempty" json:"gems,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`

	// Origin is the file or URL the recipe was read from.
	Origin string `yaml:"-" json:"-"`
}

// Tool is an executable the recipe shells out to.
type Tool struct {
	Name        string   `yaml:"name" json:"name"`
	MinVersion  string   `yaml:"min_version,omitempty" json:"min_version,omitempty"`
	VersionArgs []string `yaml:"version_args,omitempty" json:"version_args,omitempty"`
}

// Gem is a Gemfile declaration.
type Gem struct {
	Name     string   `yaml:"name" json:"name"`
	Versions []string `yaml:"versions,omitempty" json:"versions,omitempty"`
	GitHub   string   `yaml:"github,omitempty" json:"github,omitempty"`
	Branch   string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	Require  *bool    `yaml:"require,omitempty" json:"require,omitempty"`
}

// Step is one unit of the scaffolding sequence. Action selects which of the
// remaining fields apply.
type Step struct {
	ID     string `yaml:"id" json:"id"`
	Phase  string `yaml:"phase,omitempty" json:"phase,omitempty"`
	Action string `yaml:"action" json:"action"`

	// copy_file, directory, remove_file
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
	Dest   string `yaml:"dest,omitempty" json:"dest,omitempty"`
	Force  bool   `yaml:"force,omitempty" json:"force,omitempty"`

	// insert, replace, append, remove_file
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	Select string `yaml:"select,omitempty" json:"select,omitempty"`
	Anchor string `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Regexp bool   `yaml:"regexp,omitempty" json:"regexp,omitempty"`
	Where  string `yaml:"where,omitempty" json:"where,omitempty"`
	Indent int    `yaml:"indent,omitempty" json:"indent,omitempty"`

	// insert, replace, append, route, environment, say
	Content string `yaml:"content,omitempty" json:"content,omitempty"`

	// environment
	Env string `yaml:"env,omitempty" json:"env,omitempty"`

	// generate, rails, run
	Command string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Creates []string `yaml:"creates,omitempty" json:"creates,omitempty"`

	// say
	Color string `yaml:"color,omitempty" json:"color,omitempty"`

	OnFailure string `yaml:"on_failure,omitempty" json:"on_failure,omitempty"`
	Unless    string `yaml:"unless,omitempty" json:"unless,omitempty"`
}

// Action names.
const (
	ActionGems        = "gems"
	ActionCopyFile    = "copy_file"
	ActionDirectory   = "directory"
	ActionRemoveFile  = "remove_file"
	ActionGenerate    = "generate"
	ActionRails       = "rails"
	ActionRun         = "run"
	ActionInsert      = "insert"
	ActionReplace     = "replace"
	ActionAppend      = "append"
	ActionRoute       = "route"
	ActionEnvironment = "environment"
	ActionSay         = "say"
)

// ValidActions contains all valid action values.
var ValidActions = []string{
	ActionGems,
	ActionCopyFile,
	ActionDirectory,
	ActionRemoveFile,
	ActionGenerate,
	ActionRails,
	ActionRun,
	ActionInsert,
	ActionReplace,
	ActionAppend,
	ActionRoute,
	ActionEnvironment,
	ActionSay,
}

// Failure policies.
const (
	OnFailureAbort = "abort"
	OnFailureWarn  = "warn"
)

// Conditions accepted by Step.Unless.
const (
	UnlessSkipGit = "skip_git"
)

// Insert positions for Step.Where.
const (
	WhereBefore = "before"
	WhereAfter  = "after"
)

// Warns reports whether a failure of this step is logged instead of aborting.
func (s Step) Warns() bool {
	return s.OnFailure == OnFailureWarn
}

// IsCommand reports whether the step shells out.
func (s Step) IsCommand() bool {
	switch s.Action {
	case ActionGems, ActionGenerate, ActionRails, ActionRun:
		return true
	}
	return false
}
