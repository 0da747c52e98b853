package jsonld

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/net/html"
)

// ErrInvalidArgument is the panic value (wrapped) for nil documents and
// invalid values passed to this package.
var ErrInvalidArgument = errors.New("invalid argument")

// ScriptSelector matches JSON-LD script carriers.
const ScriptSelector = "script[type='application/ld+json']"

var scriptMatcher = cascadia.MustCompile(ScriptSelector)

// ScriptError describes a script element that was skipped.
type ScriptError struct {
	// Index is the position of the script among all JSON-LD scripts of the
	// document, starting at 0.
	Index int
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("JSON-LD script #%d: %s", e.Index, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

type options struct {
	repair bool
	onSkip func(*ScriptError)
}

// Option configures [Locate].
type Option func(*options)

// WithRepair makes [Locate] try to repair malformed script text before
// giving up on it.
func WithRepair() Option {
	return func(o *options) {
		o.repair = true
	}
}

// WithSkipHandler registers a function called for every script that could
// not be parsed. Skipped scripts are otherwise silent.
func WithSkipHandler(f func(*ScriptError)) Option {
	return func(o *options) {
		o.onSkip = f
	}
}

// ParseHTML parses an HTML page.
func ParseHTML(text string) (*goquery.Document, error) {
	return ParseHTMLReader(strings.NewReader(text))
}

// ParseHTMLReader parses an HTML page from r.
func ParseHTMLReader(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// FromNode returns a document rooted at an already parsed node.
func FromNode(root *html.Node) *goquery.Document {
	if root == nil {
		panic(fmt.Errorf("%w: nil HTML node", ErrInvalidArgument))
	}
	return goquery.NewDocumentFromNode(root)
}

// Locate returns the parsed content of every JSON-LD script in doc, in
// document order. Each script is parsed when the sequence reaches it.
// Scripts that do not hold valid JSON are skipped.
//
// Locate panics if doc is nil.
func Locate(doc *goquery.Document, opts ...Option) iter.Seq[Value] {
	if doc == nil {
		panic(fmt.Errorf("%w: nil document", ErrInvalidArgument))
	}

	o := &options{}
	for _, f := range opts {
		f(o)
	}

	return func(yield func(Value) bool) {
		for i, s := range doc.FindMatcher(scriptMatcher).EachIter() {
			v, err := o.parse(s.Text())
			if err != nil {
				if o.onSkip != nil {
					o.onSkip(&ScriptError{Index: i, Err: err})
				}
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

func (o *options) parse(text string) (Value, error) {
	v, err := ParseString(text)
	if err == nil || !o.repair || errors.Is(err, ErrEmptyScript) {
		return v, err
	}

	repaired, rerr := jsonrepair.JSONRepair(text)
	if rerr != nil {
		return Value{}, err
	}
	return ParseString(repaired)
}
