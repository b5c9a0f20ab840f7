package driver

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/corec/internal/ast"
)

func TestRunMalformedJSONFails(t *testing.T) {
	d := &Driver{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := d.Run(strings.NewReader("not json"))
	if err == nil {
		t.Fatal("expected an error decoding malformed source")
	}
}

func TestRunElaborationFailurePropagates(t *testing.T) {
	prog := ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtExpr, Expr: &ast.Expr{Kind: ast.ExprIdent, Ident: "missing"}},
			}},
		}},
	}}
	data, err := json.Marshal(prog)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	d := &Driver{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err = d.Run(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected elaboration to fail on an undeclared identifier")
	}
}

func TestPathJoinsOutDir(t *testing.T) {
	d := &Driver{OutDir: "/tmp/build"}
	if got := d.path(IRFileName); got != "/tmp/build/main.ll" {
		t.Fatalf("expected /tmp/build/main.ll, got %s", got)
	}

	d2 := &Driver{}
	if got := d2.path(IRFileName); got != IRFileName {
		t.Fatalf("expected bare %s with no OutDir, got %s", IRFileName, got)
	}
}
