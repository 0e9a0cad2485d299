package daytona

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// CodeRunParams carries optional settings for running a code snippet.
type CodeRunParams struct {
	// Argv is passed to the snippet as command-line arguments.
	Argv []string
	// Env is set for the interpreter process.
	Env map[string]string
}

// CodeToolbox builds the shell command used to execute a code snippet for
// one language. The snippet travels base64-encoded so it survives shell
// quoting.
type CodeToolbox interface {
	GetRunCommand(code string, params *CodeRunParams) string
}

// codeToolboxFor selects the toolbox for a language. An empty language
// defaults to Python.
func codeToolboxFor(language CodeLanguage) (CodeToolbox, error) {
	switch language {
	case CodeLanguagePython, "":
		return pythonCodeToolbox{}, nil
	case CodeLanguageTypeScript, CodeLanguageJavaScript:
		return tsCodeToolbox{}, nil
	default:
		return nil, newUnsupportedLanguage(string(language))
	}
}

type pythonCodeToolbox struct{}

func (pythonCodeToolbox) GetRunCommand(code string, params *CodeRunParams) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(code))
	return fmt.Sprintf(
		` sh -c 'echo %s | base64 --decode | %s python3 -u - %s' `,
		encoded, envString(params), argvString(params),
	)
}

// tsCodeToolbox serves both TypeScript and JavaScript: ts-node runs plain
// JavaScript unchanged.
type tsCodeToolbox struct{}

func (tsCodeToolbox) GetRunCommand(code string, params *CodeRunParams) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(code))
	return fmt.Sprintf(
		` sh -c 'echo %s | base64 --decode | %s npx ts-node -O "{\"module\":\"CommonJS\"}" -e "$(cat)" x %s 2>&1 | grep -vE "npm notice|npm warn exec"' `,
		encoded, envString(params), argvString(params),
	)
}

func envString(params *CodeRunParams) string {
	if params == nil || len(params.Env) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params.Env))
	for k := range params.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s='%s'", k, params.Env[k]))
	}
	return strings.Join(pairs, " ")
}

func argvString(params *CodeRunParams) string {
	if params == nil {
		return ""
	}
	return strings.Join(params.Argv, " ")
}
