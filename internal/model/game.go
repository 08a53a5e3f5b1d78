package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Game is one bingo card: a row-major sequence of items addressed as a
// GridSize x GridSize grid. A Game is not safe for concurrent use; the UI
// session that loaded it is its only writer.
type Game struct {
	items    []Item
	gridSize int
}

// Load parses a flat JSON object of item name -> done flag.
//
// Items keep the order in which their names first appear in the document.
// A repeated name keeps its first position and takes its last value. Only the
// first gridSize*gridSize items are kept.
func Load(data []byte, gridSize int) (*Game, error) {
	if err := checkGridSize(gridSize); err != nil {
		return nil, &ParseError{Err: err}
	}
	items, err := parseItems(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if capacity := gridSize * gridSize; len(items) > capacity {
		items = items[:capacity]
	}
	return &Game{items: items, gridSize: gridSize}, nil
}

// checkGridSize rejects sizes whose cell count does not fit in an int.
func checkGridSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("grid size must be positive, got %d", n)
	}
	if n > math.MaxInt/n {
		return fmt.Errorf("grid size %d is too large", n)
	}
	return nil
}

func parseItems(data []byte) ([]Item, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	items := []Item{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		done, ok := tok.(bool)
		if !ok {
			return nil, fmt.Errorf("value for %q is not a boolean", name)
		}
		if i, dup := seen[name]; dup {
			items[i].Done = done
			continue
		}
		seen[name] = len(items)
		items = append(items, Item{Name: name, Done: done})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return items, nil
}

// GridSize is the length of one side of the grid.
func (g *Game) GridSize() int { return g.gridSize }

// Len is the number of populated cells.
func (g *Game) Len() int { return len(g.items) }

// Items returns a copy of the items in grid order.
func (g *Game) Items() []Item {
	out := make([]Item, len(g.items))
	copy(out, g.items)
	return out
}

func (g *Game) index(row, col int) (int, bool) {
	if row < 0 || col < 0 || row > (math.MaxInt-col)/g.gridSize {
		return 0, false
	}
	i := row*g.gridSize + col
	return i, i < len(g.items)
}

// Item returns the item at (row, col). Only the linear index row*GridSize+col
// is checked, so callers must keep row and col below GridSize themselves.
// Negative coordinates, and ones whose index overflows, are absent.
func (g *Game) Item(row, col int) (Item, bool) {
	i, ok := g.index(row, col)
	if !ok {
		return Item{}, false
	}
	return g.items[i], true
}

// SetItemCompleted sets the done flag of the item at (row, col).
func (g *Game) SetItemCompleted(row, col int, completed bool) error {
	i, ok := g.index(row, col)
	if !ok {
		return &NotFoundError{Row: row, Col: col}
	}
	g.items[i].Done = completed
	return nil
}

// Stats counts done and pending items.
func (g *Game) Stats() (done, pending int) {
	for _, it := range g.items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Save encodes the game back into the name -> done object Load reads, in
// grid order. When names repeat, the first position and the later value win.
func (g *Game) Save() []byte {
	return encodeItems(g.items)
}

// SaveOver rewrites doc, a document Load accepts, with the done flags of g.
// Entries keep their document order, including those past the grid that Load
// dropped. Items missing from doc are appended in grid order.
func (g *Game) SaveOver(doc []byte) ([]byte, error) {
	items, err := parseItems(doc)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	done := make(map[string]bool, len(g.items))
	for _, it := range g.items {
		done[it.Name] = it.Done
	}
	for i := range items {
		if d, ok := done[items[i].Name]; ok {
			items[i].Done = d
			delete(done, items[i].Name)
		}
	}
	for _, it := range g.items {
		if d, ok := done[it.Name]; ok {
			items = append(items, Item{Name: it.Name, Done: d})
			delete(done, it.Name)
		}
	}
	return encodeItems(items), nil
}

func encodeItems(items []Item) []byte {
	pos := make(map[string]int, len(items))
	uniq := make([]Item, 0, len(items))
	for _, it := range items {
		if i, dup := pos[it.Name]; dup {
			uniq[i].Done = it.Done
			continue
		}
		pos[it.Name] = len(uniq)
		uniq = append(uniq, it)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range uniq {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(it.Name)
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatBool(it.Done))
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// wireGame is the shape a Game travels in between server and clients.
type wireGame struct {
	GridSize int    `json:"grid_size"`
	Items    []Item `json:"items"`
}

func (g *Game) MarshalJSON() ([]byte, error) {
	items := g.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(wireGame{GridSize: g.gridSize, Items: items})
}

func (g *Game) UnmarshalJSON(b []byte) error {
	var w wireGame
	if err := json.Unmarshal(b, &w); err != nil {
		return &ParseError{Err: err}
	}
	if err := checkGridSize(w.GridSize); err != nil {
		return &ParseError{Err: err}
	}
	if len(w.Items) > w.GridSize*w.GridSize {
		return &ParseError{Err: fmt.Errorf("%d items do not fit a %dx%d grid", len(w.Items), w.GridSize, w.GridSize)}
	}
	g.gridSize = w.GridSize
	g.items = w.Items
	if g.items == nil {
		g.items = []Item{}
	}
	return nil
}
