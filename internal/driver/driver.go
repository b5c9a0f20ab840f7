// Package driver owns the I/O side of compilation: decoding the parse AST,
// running elaboration and code generation, writing the resulting artifacts to
// disk, and invoking the external toolchain (llvm-as, clang) to produce and
// run a native binary. internal/elaborate and internal/codegen stay pure —
// no file handles, no subprocess — this package is where those results meet
// the filesystem and the OS per spec.md §6.
package driver

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/dshills/corec/internal/ast"
	"github.com/dshills/corec/internal/codegen"
	"github.com/dshills/corec/internal/elaborate"
)

// Artifact file names, fixed by spec.md §6.
const (
	IRFileName      = "main.ll"
	BitcodeFileName = "output.bc"
	BinaryName      = "a.out"
)

// Driver runs one compilation end to end. Construct one per invocation; it
// holds no state across Run calls.
type Driver struct {
	// OutDir is where main.ll, output.bc, and a.out are written and from
	// which a.out is invoked. Defaults to the current working directory.
	OutDir string

	// Stdout/Stderr are where the linked binary's output is streamed; both
	// default to the driver process's own os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Driver writing artifacts to the current working directory and
// streaming the linked binary's output to the calling process's own streams.
func New() *Driver {
	return &Driver{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Result reports how a compilation-and-run concluded.
type Result struct {
	// ExitCode is the linked binary's exit status. Only meaningful when no
	// error occurred — a failure during compilation or linking has no exit
	// code of its own and is instead reported via the returned error.
	ExitCode int
}

// Run reads the serialized parse AST from source, elaborates and lowers it,
// writes main.ll and output.bc into OutDir, links output.bc into a native
// binary with clang, and executes it. Any failure — a read error, a malformed
// AST, an elaboration or lowering error, a missing toolchain, or a failed
// link — is returned as an error; only a successfully executed binary yields
// a Result.
func (d *Driver) Run(source io.Reader) (Result, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return Result{}, errors.Wrap(err, "reading source")
	}

	var prog ast.Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return Result{}, errors.Wrap(err, "parsing source AST")
	}

	typed, err := elaborate.Elaborate(&prog)
	if err != nil {
		return Result{}, errors.Wrap(err, "elaborating program")
	}

	module, err := codegen.NewGenerator().LowerProgram(typed)
	if err != nil {
		return Result{}, errors.Wrap(err, "generating code")
	}

	irPath := d.path(IRFileName)
	if err := os.WriteFile(irPath, []byte(module.String()), 0o644); err != nil {
		return Result{}, errors.Wrap(err, "writing "+IRFileName)
	}

	bcPath := d.path(BitcodeFileName)
	if err := runTool(d.Stderr, "llvm-as", irPath, "-o", bcPath); err != nil {
		return Result{}, errors.Wrap(err, "assembling "+BitcodeFileName)
	}

	binPath := d.path(BinaryName)
	if err := runTool(d.Stderr, "clang", bcPath, "-o", binPath); err != nil {
		return Result{}, errors.Wrap(err, "linking with clang")
	}

	return d.runBinary(binPath)
}

func (d *Driver) path(name string) string {
	if d.OutDir == "" {
		return name
	}
	return filepath.Join(d.OutDir, name)
}

func (d *Driver) runBinary(path string) (Result, error) {
	cmd := exec.Command(path)
	cmd.Stdout = d.stdout()
	cmd.Stderr = d.stderr()

	err := cmd.Run()
	if err == nil {
		return Result{ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode()}, nil
	}
	return Result{}, errors.Wrap(err, "running "+path)
}

func (d *Driver) stdout() io.Writer {
	if d.Stdout != nil {
		return d.Stdout
	}
	return os.Stdout
}

func (d *Driver) stderr() io.Writer {
	if d.Stderr != nil {
		return d.Stderr
	}
	return os.Stderr
}

func runTool(stderr io.Writer, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = stderr
	return cmd.Run()
}
