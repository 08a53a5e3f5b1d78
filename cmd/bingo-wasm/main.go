//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"syscall/js"

	"github.com/Makepad-fr/bingo/internal/config"
	"github.com/Makepad-fr/bingo/internal/model"
	"github.com/Makepad-fr/bingo/internal/store/jsonstore"
)

// session holds the one card the page plays. JS calls in on a single
// thread, so it needs no locking.
type session struct {
	game *model.Game
}

var current = &session{}

func (s *session) load(data []byte, gridSize int) string {
	g, err := model.Load(data, gridSize)
	if err != nil {
		return errorJSON(err)
	}
	s.game = g
	return s.view()
}

func (s *session) setCompleted(row, col int, done bool) string {
	if s.game == nil {
		return errorJSON(errNoGame)
	}
	if row < 0 || row >= s.game.GridSize() || col < 0 || col >= s.game.GridSize() {
		return errorJSON(&model.NotFoundError{Row: row, Col: col})
	}
	if err := s.game.SetItemCompleted(row, col, done); err != nil {
		println("bingo:", err.Error())
		return errorJSON(err)
	}
	return s.view()
}

func (s *session) view() string {
	b, err := json.Marshal(s.game)
	if err != nil {
		return errorJSON(err)
	}
	return string(b)
}

type jsError string

func (e jsError) Error() string { return string(e) }

const errNoGame = jsError("no bingo loaded")

func errorJSON(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

// intArg reads args[i] as an integer. JS numbers with a fraction are
// rejected rather than truncated.
func intArg(args []js.Value, i int) (int, error) {
	v := args[i]
	if v.Type() != js.TypeNumber {
		return 0, jsError(fmt.Sprintf("argument %d must be a number, got %s", i, v.Type()))
	}
	f := v.Float()
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, jsError(fmt.Sprintf("argument %d must be an integer, got %v", i, f))
	}
	return int(f), nil
}

func newBingoWrapper(this js.Value, args []js.Value) interface{} {
	grid := config.DefaultGridSize
	if len(args) >= 1 {
		n, err := intArg(args, 0)
		if err != nil {
			return errorJSON(err)
		}
		grid = n
	}
	return current.load(jsonstore.Default(), grid)
}

// goLoadBingo(json, gridSize)
func loadBingoWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return errorJSON(jsError("goLoadBingo(json, gridSize)"))
	}
	grid := config.DefaultGridSize
	if len(args) >= 2 {
		n, err := intArg(args, 1)
		if err != nil {
			return errorJSON(err)
		}
		grid = n
	}
	return current.load([]byte(args[0].String()), grid)
}

func markCell(args []js.Value, done bool) interface{} {
	if len(args) < 2 {
		return errorJSON(jsError("expected (row, col)"))
	}
	row, err := intArg(args, 0)
	if err != nil {
		return errorJSON(err)
	}
	col, err := intArg(args, 1)
	if err != nil {
		return errorJSON(err)
	}
	return current.setCompleted(row, col, done)
}

func completeCellWrapper(this js.Value, args []js.Value) interface{} {
	return markCell(args, true)
}

func uncompleteCellWrapper(this js.Value, args []js.Value) interface{} {
	return markCell(args, false)
}

func saveBingoWrapper(this js.Value, args []js.Value) interface{} {
	if current.game == nil {
		return errorJSON(errNoGame)
	}
	return string(current.game.Save())
}

func main() {
	c := make(chan struct{})

	js.Global().Set("goNewBingo", js.FuncOf(newBingoWrapper))
	js.Global().Set("goLoadBingo", js.FuncOf(loadBingoWrapper))
	js.Global().Set("goCompleteCell", js.FuncOf(completeCellWrapper))
	js.Global().Set("goUncompleteCell", js.FuncOf(uncompleteCellWrapper))
	js.Global().Set("goSaveBingo", js.FuncOf(saveBingoWrapper))

	println("Go WebAssembly bingo initialized")
	<-c
}
