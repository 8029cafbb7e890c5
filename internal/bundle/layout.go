package bundle

import "fmt"

// TermKind classifies one polynomial coefficient by the physical quantity it
// represents. Terms beyond the acceleration term are HigherOrder and receive
// no a-priori weight.
type TermKind int

const (
	TermValue TermKind = iota
	TermRate
	TermAcceleration
	TermHigherOrder
)

func termKindFor(termIndex int) TermKind {
	switch termIndex {
	case 0:
		return TermValue
	case 1:
		return TermRate
	case 2:
		return TermAcceleration
	}
	return TermHigherOrder
}

// BlockID names one coefficient block of the parameter layout.
type BlockID int

const (
	BlockX BlockID = iota
	BlockY
	BlockZ
	BlockRA
	BlockDec
	BlockTwist
)

// label is the five-character report prefix printed on a block's first row.
func (b BlockID) label() string {
	switch b {
	case BlockX:
		return "  X  "
	case BlockY:
		return "  Y  "
	case BlockZ:
		return "  Z  "
	case BlockRA:
		return " RA  "
	case BlockDec:
		return "DEC  "
	case BlockTwist:
		return "TWI  "
	}
	return "     "
}

// Block is one contiguous run of coefficients inside the parameter vector.
type Block struct {
	ID     BlockID
	Offset int
	Terms  int
	Angle  bool
}

// ParameterLayout is the fixed index map of an observation's parameter
// vector. Block order is X, Y, Z, RA, DEC, then TWIST when twist is solved;
// within a block coefficients run lowest order first. The external solver
// numbers its unknowns with exactly this layout, so the order must never
// change.
type ParameterLayout struct {
	blocks []Block
	kinds  []TermKind
	names  []string

	positionTerms int
	angleTerms    int
	position      int
	pointing      int
}

// newParameterLayout derives the layout from the solve settings.
func newParameterLayout(s SolveSettings) ParameterLayout {
	l := ParameterLayout{
		positionTerms: s.PositionCoefficients(),
		angleTerms:    s.AngleCoefficients(),
	}
	l.position = 3 * l.positionTerms
	l.pointing = 2 * l.angleTerms
	if s.SolveTwist {
		l.pointing = 3 * l.angleTerms
	}

	offset := 0
	addBlock := func(id BlockID, terms int, angle bool) {
		if terms == 0 {
			return
		}
		l.blocks = append(l.blocks, Block{ID: id, Offset: offset, Terms: terms, Angle: angle})
		for i := 0; i < terms; i++ {
			l.kinds = append(l.kinds, termKindFor(i))
			prefix := "     "
			if i == 0 {
				prefix = id.label()
			}
			l.names = append(l.names, fmt.Sprintf("%s(t%d)", prefix, i))
		}
		offset += terms
	}

	addBlock(BlockX, l.positionTerms, false)
	addBlock(BlockY, l.positionTerms, false)
	addBlock(BlockZ, l.positionTerms, false)
	addBlock(BlockRA, l.angleTerms, true)
	addBlock(BlockDec, l.angleTerms, true)
	if s.SolveTwist {
		addBlock(BlockTwist, l.angleTerms, true)
	}
	return l
}

// NumberParameters reports the total parameter count.
func (l ParameterLayout) NumberParameters() int { return l.position + l.pointing }

// NumberPositionParameters reports the position parameter count.
func (l ParameterLayout) NumberPositionParameters() int { return l.position }

// NumberPointingParameters reports the pointing parameter count.
func (l ParameterLayout) NumberPointingParameters() int { return l.pointing }

// PositionTerms reports the coefficients solved per position axis.
func (l ParameterLayout) PositionTerms() int { return l.positionTerms }

// AngleTerms reports the coefficients solved per pointing angle.
func (l ParameterLayout) AngleTerms() int { return l.angleTerms }

// Blocks returns the block table in layout order.
func (l ParameterLayout) Blocks() []Block { return l.blocks }

// Block looks a block up by id.
func (l ParameterLayout) Block(id BlockID) (Block, bool) {
	for _, b := range l.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// Kind reports the term kind of parameter i.
func (l ParameterLayout) Kind(i int) TermKind { return l.kinds[i] }

// IsAngle reports whether parameter i belongs to a pointing block.
func (l ParameterLayout) IsAngle(i int) bool { return i >= l.position }

// Name reports the report label of parameter i, e.g. "  X  (t0)".
func (l ParameterLayout) Name(i int) string { return l.names[i] }

// Names returns the labels of every parameter in layout order.
func (l ParameterLayout) Names() []string {
	return append([]string(nil), l.names...)
}
