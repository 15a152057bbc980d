package apidesc

// document mirrors one description file.
type document struct {
	Name       string          `toml:"name"`
	Headers    []string        `toml:"headers"`
	Types      []typeDecl      `toml:"type"`
	Interfaces []interfaceDecl `toml:"interface"`
	Functions  []funcDecl      `toml:"function"`
	State      *stateDecl      `toml:"state"`
}

type typeDecl struct {
	Name    string       `toml:"name"`
	Kind    string       `toml:"kind"`
	Tag     string       `toml:"tag"`
	Type    string       `toml:"type"`    // underlying, element or backing type
	Literal string       `toml:"literal"` // bool|sint|uint|float|double
	Wide    bool         `toml:"wide"`
	Length  string       `toml:"length"`
	Size    string       `toml:"size"`
	Values  []string     `toml:"values"`
	Members []memberDecl `toml:"members"`
	Switch  string       `toml:"switch"`
	Default string       `toml:"default"`
	Cases   []caseDecl   `toml:"cases"`
	Range   string       `toml:"range"`
	Key     string       `toml:"key"`
}

type memberDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type caseDecl struct {
	Expr string `toml:"expr"`
	Type string `toml:"type"`
}

type argDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Out  bool   `toml:"out"`
}

type funcDecl struct {
	Name    string    `toml:"name"`
	Result  string    `toml:"result"`
	Call    string    `toml:"call"`
	Std     bool      `toml:"std"`
	Private bool      `toml:"private"`
	Args    []argDecl `toml:"args"`
}

type interfaceDecl struct {
	Name    string     `toml:"name"`
	Base    string     `toml:"base"`
	Methods []funcDecl `toml:"methods"`
}

type stateDecl struct {
	Namespace   string            `toml:"namespace"`
	Includes    []string          `toml:"includes"`
	Enum        string            `toml:"enum"`
	Root        string            `toml:"root"`
	ErrorCheck  string            `toml:"error_check"`
	Prefix      string            `toml:"prefix"`
	BoundGetter string            `toml:"bound_getter"`
	Validate    bool              `toml:"validate"` // accessors must be described functions
	Spellings   map[string]string `toml:"spellings"`
	Getters     []getterDecl      `toml:"getter"`
	Params      []paramDecl       `toml:"param"`
	Sections    []sectionDecl     `toml:"section"`
}

type getterDecl struct {
	Radical     string            `toml:"radical"`
	Suffix      string            `toml:"suffix"`
	Inflections map[string]string `toml:"inflections"`
}

type paramDecl struct {
	Name    string   `toml:"name"`
	Getters []string `toml:"getters"`
	Type    string   `toml:"type"` // empty or "X": never queried
	Count   int      `toml:"count"`
}

type sectionDecl struct {
	Name   string    `toml:"name"`
	Getter string    `toml:"getter"`
	Args   []string  `toml:"args"`
	Guard  string    `toml:"guard"`
	Loop   *loopDecl `toml:"loop"`
}

type loopDecl struct {
	Var   string `toml:"var"`
	Bound string `toml:"bound"`
	Base  string `toml:"base"`
}
