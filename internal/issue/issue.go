// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Catalog entries.
const (
	ManifestNotFoundId Id = iota + 1
	ManifestInvalidId
	CommandNotFoundId
	AmbiguousCommandId
	UnknownArgumentId
	DependencyCycleId
	MissingDependencyId
	ShellNotFoundId
	ConfigLoadFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the body of an entry.
	MarkdownMsg string

	// Issue is a Markdown explanation of a common failure with remedies.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the entry's identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the entry with the glamour style at stylePath ("dark", "light",
// "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No rfile found

We looked for ` + "`rfile`, `rfile.yml` and `rfile.yaml`" + ` in the current directory and
every parent directory.

## Things you can try
- Create an rfile next to your project:
~~~yaml
hello: |
  # Say hello
  echo "hello"

build: |
  # dep: hello
  go build ./...
~~~
- Point at a file explicitly:
~~~
$ r -r path/to/rfile.yml
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# The rfile could not be loaded

An rfile is a YAML mapping from command names to scripts. Directives go in the
leading comment lines of each script.

## Common causes
- A value that is a list or a mapping instead of a script
- The same command name twice
- A ` + "`# dep:`" + ` chain that loops back to itself
- A directive without a value, such as ` + "`# shell:`" + `

## Things you can try
~~~
$ r --check
~~~`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found

No command starts with what you typed.

## Things you can try
- List the commands of this rfile:
~~~
$ r -h
~~~
- Check for typos; any unique prefix of a command name works`,
	}

	ambiguousCommandIssue = &Issue{
		id: AmbiguousCommandId,
		mdMsg: `
# Ambiguous command

More than one command starts with what you typed. Type more characters, or the
full name.`,
	}

	unknownArgumentIssue = &Issue{
		id: UnknownArgumentId,
		mdMsg: `
# Unknown argument

Commands only accept the arguments they declare:
~~~yaml
greet: |
  # arg: name (who to greet)
  echo "hello $NAME"
~~~
Show the arguments of a command with ` + "`r <command> -h`" + `.`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle

The ` + "`# dep:`" + ` directives form a loop, so no command in it could ever start.
Remove one of the dependencies in the reported path.`,
	}

	missingDependencyIssue = &Issue{
		id: MissingDependencyId,
		mdMsg: `
# Missing dependency

A ` + "`# dep:`" + ` directive names a command that is not in the rfile. Dependency
names must match exactly; prefixes are not resolved.`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Interpreter not found

The interpreter of the command is not on your PATH.

## Things you can try
- Install it, or pick another one with ` + "`# shell: <name>`" + `
- Use the built-in shell, which needs nothing installed:
~~~yaml
build: |
  # shell: virtual
  echo "portable"
~~~
- Or make it the default in your config:
~~~cue
shell: default: "virtual"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The config file is CUE validated against the built-in schema.

## Things you can try
- Show the effective configuration:
~~~
$ r --show-config
~~~
- Check the reported field path and value in your config.cue`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():  manifestNotFoundIssue,
		manifestInvalidIssue.Id():   manifestInvalidIssue,
		commandNotFoundIssue.Id():   commandNotFoundIssue,
		ambiguousCommandIssue.Id():  ambiguousCommandIssue,
		unknownArgumentIssue.Id():   unknownArgumentIssue,
		dependencyCycleIssue.Id():   dependencyCycleIssue,
		missingDependencyIssue.Id(): missingDependencyIssue,
		shellNotFoundIssue.Id():     shellNotFoundIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
