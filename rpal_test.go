package rpal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpreter_EvalString(t *testing.T) {
	var in Interpreter
	got, err := in.EvalString("let x = 5 in x + 3")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "8", got)
}

func TestInterpreter_Print(t *testing.T) {
	var out bytes.Buffer
	in := Interpreter{Output: &out}
	_, err := in.Eval("Print 'hi'")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "'hi'", out.String())
}

func TestInterpreter_ParseError(t *testing.T) {
	var in Interpreter
	_, err := in.EvalString("let x = in x")
	assert.Error(t, err)
}

func TestInterpreter_Cache(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.rpal")
	src := "let x = 5 in x + 3"
	if err := os.WriteFile(srcPath, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	in := Interpreter{Cache: &FileCache{}, CachePath: srcPath}
	got, err := in.EvalString(src)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "8", got)

	if _, statErr := os.Stat(filepath.Join(dir, "prog.rpalc")); !assert.NoError(t, statErr) {
		return
	}

	got2, err := in.EvalString(src)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "8", got2)
}
