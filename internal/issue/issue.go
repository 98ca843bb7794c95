// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageNotFoundId Id = iota + 1
	PackageDeclarationParseErrorId
	ExtensionConflictId
	DependencyCycleId
	LinkerBoundaryMissingId
	ResourceUnknownTypeId
	ConfigLoadFailedId
	OutputPathNotWritableId
	ThirdPartyLockMismatchId
	ReleaseManifestLookupFailedId
	NodeModulesModeInvalidId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links; may be empty
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

A package reference couldn't be resolved against any configured package
root.

## Search locations (in order of precedence):
1. The ` + "`packages`" + ` directory inside the app directory
2. ` + "`Library`" + ` roots from your config file
3. Directories listed in ` + "`PACKAGE_DIRS`" + `

## Things you can try:
- Double check the package name for typos
- Verify a ` + "`package.cue`" + ` exists at the expected root
- Add the missing root to ` + "`PACKAGE_DIRS`" + `:
~~~
$ PACKAGE_DIRS=/path/to/packages:$PACKAGE_DIRS buildforge build
~~~`,
	}

	packageDeclarationParseErrorIssue = &Issue{
		id: PackageDeclarationParseErrorId,
		mdMsg: `
# Failed to parse package declaration!

The package's ` + "`package.cue`" + ` file contains syntax errors or values
that don't unify with the declaration schema.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- A ` + "`use`" + ` entry pointing at a package that isn't declared
- Missing required field (name)

## Things you can try:
- Check the error message above for the specific field/path
- Validate the file with the ` + "`cue`" + ` command-line tool
- Compare against a known-good package.cue in another package`,
	}

	extensionConflictIssue = &Issue{
		id: ExtensionConflictId,
		mdMsg: `
# Extension conflict!

Two extension handlers were registered for the same file extension.

## Things you can try:
- Check any custom handler registration for a duplicate extension
- Only one handler may own a given extension at a time; remove or rename
  the conflicting registration`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Two or more packages reference each other's ` + "`use`" + ` lists in a way
that forms a cycle, so no valid load order exists.

## Example of a cycle:
~~~cue
// package a/package.cue
onUse: use: [{names: ["b"]}]
~~~
~~~cue
// package b/package.cue
onUse: use: [{names: ["a"]}]  // cycle: a -> b -> a
~~~

## Things you can try:
- Review the ` + "`use`" + ` field of every package named in the cycle above
- Break the cycle by extracting shared code into a third package
- Mark one side ` + "`unordered`" + ` if the two packages don't actually need
  a load-order guarantee between them`,
	}

	linkerBoundaryMissingIssue = &Issue{
		id: LinkerBoundaryMissingId,
		mdMsg: `
# Linker boundary missing!

The linker could not find a matching boundary marker while resolving a
cross-slice reference during the link phase.

## Things you can try:
- Confirm the exporting slice actually finished prelink before this
  reference is resolved
- Check that the symbol name matches exactly (case-sensitive)
- Verify the referencing slice's package is listed in the exporter's
  package's ` + "`use`" + ` field`,
	}

	resourceUnknownTypeIssue = &Issue{
		id: ResourceUnknownTypeId,
		mdMsg: `
# Unknown resource type!

An extension handler emitted a resource whose type is not one the bundle
knows how to place (js, css, head, body or static). Files with no registered
handler are not the cause; they are served as static resources.

## Things you can try:
- Check the extension handler registered for this file type
- Remove the file from the package's source directories if it isn't
  meant to be bundled
- Check for a typo in the file extension`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the buildforge configuration file.

## Configuration file locations:
- Linux: ~/.config/buildforge/config.toml
- macOS: ~/Library/Application Support/buildforge/config.toml
- Windows: %APPDATA%\buildforge\config.toml

## Things you can try:
- Check the TOML syntax in the config file
- Remove the config file to fall back to defaults:
~~~
$ rm ~/.config/buildforge/config.toml
~~~

## Example configuration:
~~~toml
output_path = "./build"
node_modules_mode = "copy"
minify = true
library = ["/home/user/shared-packages"]
~~~`,
	}

	outputPathNotWritableIssue = &Issue{
		id: OutputPathNotWritableId,
		mdMsg: `
# Output path not writable!

The bundle could not create or rename its build directory into the
configured output path.

## Things you can try:
- Check that the parent of the output path exists and is writable
- Remove a stale ` + "`.build.<name>`" + ` directory left over from a
  previous failed run
- Make sure no other process holds the output path open`,
	}

	thirdPartyLockMismatchIssue = &Issue{
		id: ThirdPartyLockMismatchId,
		mdMsg: `
# Third-party lockfile mismatch!

A package declared a third-party dependency whose recorded version in
` + "`thirdparty.lock.toml`" + ` doesn't match what was actually resolved.

## Things you can try:
- Regenerate the lockfile for the package
- Pin the dependency to the version actually present in node_modules
- Check for two packages requiring incompatible versions of the same
  third-party module`,
	}

	releaseManifestLookupFailedIssue = &Issue{
		id: ReleaseManifestLookupFailedId,
		mdMsg: `
# Release manifest lookup failed!

The configured ` + "`ReleaseManifest`" + ` couldn't resolve a warehouse
entry for a package version pinned by ` + "`ReleaseStamp`" + `.

## Things you can try:
- Confirm the release manifest implementation you injected actually
  covers this package name
- Fall back to the default (no-release) stamp for local builds
- Check that the warehouse path recorded for this version still exists`,
	}

	nodeModulesModeInvalidIssue = &Issue{
		id: NodeModulesModeInvalidId,
		mdMsg: `
# Invalid node_modules mode!

The configured ` + "`NodeModulesMode`" + ` is not one of the recognized
values.

## Valid modes:
- **skip**: don't emit node_modules into the bundle at all
- **copy**: copy resolved third-party packages into the output
- **symlink**: symlink resolved third-party packages into the output

## Example:
~~~toml
node_modules_mode = "copy"
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to write to a protected output directory
- A source file is not readable by the current user

## Things you can try:
- Check file/directory permissions
- Run buildforge from a directory you own
- Point ` + "`OutputPath`" + ` at a directory you control`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():              packageNotFoundIssue,
		packageDeclarationParseErrorIssue.Id(): packageDeclarationParseErrorIssue,
		extensionConflictIssue.Id():            extensionConflictIssue,
		dependencyCycleIssue.Id():              dependencyCycleIssue,
		linkerBoundaryMissingIssue.Id():        linkerBoundaryMissingIssue,
		resourceUnknownTypeIssue.Id():          resourceUnknownTypeIssue,
		configLoadFailedIssue.Id():             configLoadFailedIssue,
		outputPathNotWritableIssue.Id():        outputPathNotWritableIssue,
		thirdPartyLockMismatchIssue.Id():       thirdPartyLockMismatchIssue,
		releaseManifestLookupFailedIssue.Id():  releaseManifestLookupFailedIssue,
		nodeModulesModeInvalidIssue.Id():       nodeModulesModeInvalidIssue,
		permissionDeniedIssue.Id():             permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
