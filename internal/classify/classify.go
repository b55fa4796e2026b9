// Package classify provides the entity predicates the analysis passes
// share: system-header filtering, the unsafe-function set, the standard
// library set, and stable entity identity.
package classify

import (
	"fmt"
	"strings"

	"github.com/hargabyte/cpg/internal/frontend"
)

// systemRoots are the include roots whose entities are excluded from the
// graph.
var systemRoots = []string{
	"/usr/include/",
	"/usr/lib/",
	"/usr/local/include/",
}

// unsafeFunctions are string/memory routines with no bounds checking.
var unsafeFunctions = map[string]bool{
	"strcpy":   true,
	"strcat":   true,
	"sprintf":  true,
	"gets":     true,
	"scanf":    true,
	"vsprintf": true,
	"memcpy":   true,
	"memmove":  true,
	"strncpy":  true,
	"strncat":  true,
}

// stdFunctions enumerates common libc I/O, memory, time, conversion and
// string routines. Calls to these are filtered from scanner evidence.
var stdFunctions = map[string]bool{
	"printf": true, "sprintf": true, "fprintf": true, "snprintf": true,
	"vprintf": true, "vsprintf": true, "vfprintf": true, "vsnprintf": true,
	"scanf": true, "sscanf": true, "fscanf": true,
	"vscanf": true, "vsscanf": true, "vfscanf": true,
	"malloc": true, "calloc": true, "realloc": true, "aligned_alloc": true,
	"free": true, "exit": true, "abort": true, "atexit": true, "_Exit": true,
	"system": true, "getenv": true, "setenv": true, "putenv": true,
	"unsetenv": true,
	"time":     true, "clock": true, "difftime": true, "mktime": true,
	"asctime": true, "ctime": true, "gmtime": true, "localtime": true,
	"strftime": true,
	"rand":     true, "srand": true, "rand_r": true,
	"atoi": true, "atol": true, "atoll": true,
	"strtol": true, "strtoll": true, "strtoul": true, "strtoull": true,
	"memcpy": true, "memmove": true, "memset": true, "memcmp": true,
	"memchr": true, "memccpy": true,
	"strlen": true, "strnlen": true,
	"strcpy": true, "strncpy": true, "strcat": true, "strncat": true,
	"strcmp": true, "strncmp": true,
	"strchr": true, "strrchr": true, "strstr": true, "strtok": true,
	"fopen": true, "fclose": true, "fflush": true,
	"fread": true, "fwrite": true,
	"fseek": true, "ftell": true, "fgetpos": true, "fsetpos": true,
}

// IsSystemPath reports whether a file path lies under a system include
// root.
func IsSystemPath(path string) bool {
	for _, root := range systemRoots {
		if strings.Contains(path, root) {
			return true
		}
	}
	return false
}

// IsSystem reports whether an entity's source location lies under a
// system include root. Entities without a location are not system.
func IsSystem(e frontend.Entity) bool {
	loc, ok := e.Location()
	if !ok {
		return false
	}
	return IsSystemPath(loc.File)
}

// IsUnsafe reports whether a function name belongs to the unsafe set.
func IsUnsafe(name string) bool {
	return unsafeFunctions[name]
}

// IsStandardLibrary reports whether a function name belongs to the
// standard library set.
func IsStandardLibrary(name string) bool {
	return stdFunctions[name]
}

// UnsafeFunctions returns a copy of the unsafe set, for callers that
// extend it from configuration.
func UnsafeFunctions() map[string]bool {
	set := make(map[string]bool, len(unsafeFunctions))
	for name := range unsafeFunctions {
		set[name] = true
	}
	return set
}

// EntityID returns a stable identity string "{name}:{line}:{col}",
// falling back to the bare name, falling back to the kind's textual
// form. Used for revisit suppression in the AST pass.
func EntityID(e frontend.Entity) string {
	name := e.Name()
	if name != "" {
		if loc, ok := e.Location(); ok {
			return fmt.Sprintf("%s:%d:%d", name, loc.Line, loc.Column)
		}
		return name
	}
	return e.Kind().String()
}

// LineOf returns an entity's 1-based line number, 0 when unknown.
func LineOf(e frontend.Entity) int {
	if loc, ok := e.Location(); ok {
		return loc.Line
	}
	return 0
}
