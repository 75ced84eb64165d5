package graph

import (
	"encoding/json"
	"fmt"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
)

// irDocument is the on-disk shape decoded per spec.md §6.1: a JSON object
// with a "status" discriminator, either an embedded error message or a
// start id plus the flat instruction array.
type irDocument struct {
	Status       string          `json:"status"`
	Version      int             `json:"version"`
	Message      string          `json:"message,omitempty"`
	Start        int             `json:"start,omitempty"`
	Instructions []irInstruction `json:"instructions,omitempty"`
}

type irInstruction struct {
	Name     string    `json:"name"`
	First    *int      `json:"first,omitempty"`
	Second   *int      `json:"second,omitempty"`
	Target   *int      `json:"target,omitempty"`
	Expected *int      `json:"expected,omitempty"`
	Label    *string   `json:"label,omitempty"`
	Classes  []irClass `json:"classes,omitempty"`
	RuleName *string   `json:"ruleName"`
}

type irClass struct {
	Negated bool      `json:"negated"`
	Ranges  [][2]byte `json:"ranges"`
}

const supportedIRVersion = 0

// Load decodes the IR document ir, reports an embedded error or malformed
// input as *LoadError, runs left-recursion validation (returning
// *LeftRecursiveError if any rule is left-recursive), infers expected sets
// for every Error instruction, and returns the resulting Parser.
//
// Grounded on spec.md §4.3 and §6.1, and on the teacher's bootstrap/vm
// split: the IR here plays the role of the teacher's *ast.Grammar, and Load
// the role of builder.BuildParser's front half (decode + resolve ids)
// before any code is generated.
func Load(ir []byte) (*Parser, error) {
	var doc irDocument
	if err := json.Unmarshal(ir, &doc); err != nil {
		return nil, &LoadError{Message: errors.Wrap(err, "malformed IR").Error()}
	}

	switch doc.Status {
	case "error":
		return nil, &LoadError{Message: doc.Message}
	case "success":
		// fall through
	default:
		return nil, &LoadError{Message: fmt.Sprintf("unknown status %q", doc.Status)}
	}

	if doc.Version != supportedIRVersion {
		return nil, &LoadError{Message: "invalid version"}
	}

	p, err := buildGraph(doc)
	if err != nil {
		return nil, err
	}

	if errs := p.Validate(); len(errs) > 0 {
		names := collectLeftRecursiveNames(p, errs)
		return nil, &LeftRecursiveError{Names: names}
	}

	if err := p.InferExpected(); err != nil {
		return nil, &LoadError{Message: err.Error()}
	}

	return p, nil
}

func buildGraph(doc irDocument) (*Parser, error) {
	p := New()
	n := len(doc.Instructions)

	validID := func(ix int) error {
		if ix < 0 || ix >= n {
			return &LoadError{Message: fmt.Sprintf("Illegal instruction ID %d", ix)}
		}
		return nil
	}

	labelIDs := make(map[string]LabelID)

	for i, raw := range doc.Instructions {
		id := InstructionID(i)

		var instr Instruction
		switch raw.Name {
		case "seq", "choice":
			if raw.First == nil || raw.Second == nil {
				return nil, &LoadError{Message: fmt.Sprintf("%s instruction %d missing first/second", raw.Name, i)}
			}
			if err := validID(*raw.First); err != nil {
				return nil, err
			}
			if err := validID(*raw.Second); err != nil {
				return nil, err
			}
			if raw.Name == "seq" {
				instr = Seq(InstructionID(*raw.First), InstructionID(*raw.Second))
			} else {
				instr = Choice(InstructionID(*raw.First), InstructionID(*raw.Second))
			}

		case "notAhead", "delegate":
			if raw.Target == nil {
				return nil, &LoadError{Message: fmt.Sprintf("%s instruction %d missing target", raw.Name, i)}
			}
			if err := validID(*raw.Target); err != nil {
				return nil, err
			}
			if raw.Name == "notAhead" {
				instr = NotAhead(InstructionID(*raw.Target))
			} else {
				instr = Delegate(InstructionID(*raw.Target))
			}

		case "error":
			if raw.Target == nil || raw.Expected == nil {
				return nil, &LoadError{Message: fmt.Sprintf("error instruction %d missing target/expected", i)}
			}
			if err := validID(*raw.Target); err != nil {
				return nil, err
			}
			if err := validID(*raw.Expected); err != nil {
				return nil, err
			}
			instr = Instruction{
				Kind:                 KindError,
				Target:               InstructionID(*raw.Target),
				PreInferenceExpected: InstructionID(*raw.Expected),
			}

		case "label":
			if raw.Target == nil || raw.Label == nil {
				return nil, &LoadError{Message: fmt.Sprintf("label instruction %d missing target/label", i)}
			}
			if err := validID(*raw.Target); err != nil {
				return nil, err
			}
			if !isSnakeCase(*raw.Label) {
				return nil, &LoadError{Message: fmt.Sprintf("label %q is not snake_case", *raw.Label)}
			}
			lid, ok := labelIDs[*raw.Label]
			if !ok {
				lid = p.Labels.Insert(*raw.Label)
				labelIDs[*raw.Label] = lid
			}
			instr = LabelInstr(InstructionID(*raw.Target), lid)

		case "series":
			s := EmptySeries()
			for _, rc := range raw.Classes {
				c := NewClass(rc.Negated)
				for _, rng := range rc.Ranges {
					c.Insert(rng[0], rng[1])
				}
				s = s.Append(c)
			}
			sid := p.Series.Insert(s)
			instr = SeriesInstr(sid)

		default:
			return nil, &LoadError{Message: fmt.Sprintf("unknown instruction kind %q", raw.Name)}
		}

		p.Instructions.Set(id, instr)

		if raw.RuleName != nil {
			p.SetSymbol(id, NamedSymbol(*raw.RuleName))
		} else {
			p.SetSymbol(id, AnonymousSymbol())
		}
	}

	if err := validID(doc.Start); err != nil {
		return nil, err
	}
	p.Start = InstructionID(doc.Start)

	return p, nil
}

// isSnakeCase reports whether s matches the label grammar required by
// spec.md §6.1: [a-z]+(_[a-z]+)*. strcase.ToSnake is idempotent on valid
// snake_case input, so round-tripping through it is a cheap validity check
// without hand-rolling the regex walk.
func isSnakeCase(s string) bool {
	if s == "" {
		return false
	}
	return strcase.ToSnake(s) == s && !containsUpperOrDigit(s)
}

func containsUpperOrDigit(s string) bool {
	for _, r := range s {
		if r == '_' {
			continue
		}
		if r < 'a' || r > 'z' {
			return true
		}
	}
	return false
}

func collectLeftRecursiveNames(p *Parser, errs []ValidationError) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, e := range errs {
		sym := p.Symbol(e.Instruction)
		for _, n := range sym.Names() {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sortStrings(names)
	return names
}

// DumpJSON serializes p back into the §6.1 wire shape, for the round-trip
// testable property in spec.md §8: load(dump_json(parser)) == parser up to
// id renumbering.
func (p *Parser) DumpJSON() ([]byte, error) {
	labelName := make(map[LabelID]string)
	p.Labels.Each(func(id LabelID, name string) { labelName[id] = name })

	maxID := 0
	p.Instructions.Each(func(id InstructionID, _ Instruction) {
		if int(id)+1 > maxID {
			maxID = int(id) + 1
		}
	})

	instrs := make([]*irInstruction, maxID)
	p.Instructions.Each(func(id InstructionID, in Instruction) {
		raw := &irInstruction{Name: in.Kind.String()}
		switch in.Kind {
		case KindSeq, KindChoice, KindFirstChoice:
			a, b := int(in.A), int(in.B)
			raw.First, raw.Second = &a, &b
		case KindNotAhead, KindDelegate:
			t := int(in.Target)
			raw.Target = &t
		case KindError:
			t, e := int(in.Target), int(in.Expected)
			raw.Target, raw.Expected = &t, &e
		case KindLabel:
			t := int(in.Target)
			name := labelName[in.Label]
			raw.Target, raw.Label = &t, &name
		case KindCache:
			t := int(in.Target)
			raw.Target = &t
		case KindSeries:
			series, _ := p.Series.Get(in.Series)
			for _, c := range series.Classes() {
				rc := irClass{Negated: c.Negated()}
				for _, r := range c.Ranges() {
					rc.Ranges = append(rc.Ranges, [2]byte{r.lo, r.hi})
				}
				raw.Classes = append(raw.Classes, rc)
			}
		}

		sym := p.Symbol(id)
		if !sym.Empty() {
			name := sym.Names()[0]
			raw.RuleName = &name
		}
		instrs[id] = raw
	})

	doc := irDocument{
		Status:       "success",
		Version:      supportedIRVersion,
		Start:        int(p.Start),
		Instructions: make([]irInstruction, len(instrs)),
	}
	for i, in := range instrs {
		if in != nil {
			doc.Instructions[i] = *in
		} else {
			doc.Instructions[i] = irInstruction{Name: "series"}
		}
	}

	return json.Marshal(doc)
}
