package lpfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/born-ml/lpio/internal/format"
	"github.com/born-ml/lpio/internal/model"
	"github.com/born-ml/lpio/internal/parallel"
	"github.com/born-ml/lpio/internal/table"
)

// Options configures the LP writer.
type Options struct {
	Parallel parallel.Config // Elementwise formatting parallelism
	Observer Observer        // Optional section hook
	Logger   *slog.Logger    // Defaults to a discarding logger
}

// DefaultOptions returns options with CPU-based parallelism and no logging.
func DefaultOptions() Options {
	return Options{
		Parallel: parallel.DefaultConfig(),
		Logger:   slog.New(slog.DiscardHandler),
	}
}

// WriteFile writes m to path. An existing file is removed first so stale
// content never survives; the file is closed on every return path.
func WriteFile(path string, m *model.Model, opts Options) (err error) {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid model: %w", err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove existing file: %w", err)
	}

	//nolint:gosec // G304: File path comes from the caller, which is expected for exports
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return encode(file, m, opts)
}

// Encode writes m to w in LP format.
func Encode(w io.Writer, m *model.Model, opts Options) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid model: %w", err)
	}
	return encode(w, m, opts)
}

type sectionWriter func(e *encoder, m *model.Model) error

var sections = []struct {
	section Section
	write   sectionWriter
}{
	{SectionObjective, (*encoder).objective},
	{SectionConstraints, (*encoder).constraints},
	{SectionBounds, (*encoder).bounds},
	{SectionBinaries, (*encoder).binaries},
}

func encode(w io.Writer, m *model.Model, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	e := &encoder{
		out: &countingWriter{w: w},
		fmt: format.New(opts.Parallel),
	}
	e.buf = bufio.NewWriter(e.out)

	start := time.Now()
	for _, s := range sections {
		if err := e.run(s.section, s.write, m, opts.Observer); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.section, err)
		}
	}

	opts.Logger.Info("lp file written",
		"bytes", e.out.n,
		"duration", time.Since(start).Round(10*time.Millisecond),
	)
	return nil
}

type encoder struct {
	out   *countingWriter
	buf   *bufio.Writer
	fmt   *format.Formatter
	lines int
}

// run formats and writes one section, then flushes it to the sink.
func (e *encoder) run(s Section, write sectionWriter, m *model.Model, obs Observer) error {
	if obs != nil {
		obs.SectionStart(s)
	}
	start, before := time.Now(), e.out.n
	e.lines = 0

	err := write(e, m)
	if err == nil {
		err = e.buf.Flush()
	}

	if obs != nil {
		obs.SectionDone(s, SectionStats{
			Bytes:    e.out.n - before,
			Lines:    e.lines,
			Duration: time.Since(start),
		}, err)
	}
	return err
}

func (e *encoder) objective(m *model.Model) error {
	if _, err := e.buf.WriteString("min\nobj:\n"); err != nil {
		return err
	}

	obj := m.Objective
	terms, err := e.fmt.Join(e.fmt.Floats(obj.Coeffs), format.Lit(" x"), e.fmt.Ints(obj.Vars), format.Lit("\n"))
	if err != nil {
		return err
	}
	return e.writeMasked(terms, obj.TermMask())
}

func (e *encoder) constraints(m *model.Model) error {
	if _, err := e.buf.WriteString("\n\ns.t.\n\n"); err != nil {
		return err
	}

	for _, name := range m.Constraints.Names() {
		if err := e.constraintGroup(m, name); err != nil {
			return fmt.Errorf("constraint %q: %w", name, err)
		}
	}
	return nil
}

func (e *encoder) constraintGroup(m *model.Model, name string) error {
	labels, err := table.Field[int64](m.Constraints, name)
	if err != nil {
		return err
	}
	coeffs, err := table.Field[float64](m.ConstraintsLHSCoeffs, name)
	if err != nil {
		return err
	}
	vars, err := table.Field[int64](m.ConstraintsLHSVars, name)
	if err != nil {
		return err
	}
	sign, err := table.Field[string](m.ConstraintsSign, name)
	if err != nil {
		return err
	}
	rhs, err := table.Field[float64](m.ConstraintsRHS, name)
	if err != nil {
		return err
	}
	termDims := model.TermDims(labels, coeffs)

	termMask, err := table.NotNull(coeffs).And(table.NotEqual(vars, model.Sentinel))
	if err != nil {
		return err
	}
	terms, err := e.fmt.Join(e.fmt.Floats(coeffs), format.Lit(" x"), e.fmt.Ints(vars), format.Lit("\n"))
	if err != nil {
		return err
	}
	terms, err = format.Where(terms, termMask)
	if err != nil {
		return err
	}
	lhs, err := format.ReduceConcat(terms, termDims...)
	if err != nil {
		return err
	}

	rowMask, err := termMask.Any(termDims...)
	if err != nil {
		return err
	}
	for _, extra := range []*table.Mask{
		table.NotEqual(labels, model.Sentinel),
		table.NotNull(sign),
		table.NotNull(rhs),
	} {
		if rowMask, err = rowMask.And(extra); err != nil {
			return err
		}
	}

	rows, err := e.fmt.Join(
		format.Lit("c"),
		e.fmt.Ints(labels),
		format.Lit(": \n"),
		lhs,
		sign,
		format.Lit("\n"),
		e.fmt.Floats(rhs),
		format.Lit("\n\n"),
	)
	if err != nil {
		return err
	}
	return e.writeMasked(rows, rowMask)
}

func (e *encoder) bounds(m *model.Model) error {
	if _, err := e.buf.WriteString("\nbounds\n"); err != nil {
		return err
	}

	for _, name := range m.NonBinaryVariables() {
		labels, err := table.Field[int64](m.Variables, name)
		if err != nil {
			return err
		}
		lower, err := table.Field[float64](m.VariablesLowerBound, name)
		if err != nil {
			return err
		}
		upper, err := table.Field[float64](m.VariablesUpperBound, name)
		if err != nil {
			return err
		}

		mask, err := table.NotNull(lower).And(table.NotNull(upper))
		if err != nil {
			return err
		}
		if mask, err = mask.And(table.NotEqual(labels, model.Sentinel)); err != nil {
			return err
		}

		lines, err := e.fmt.Join(
			e.fmt.Floats(lower),
			format.Lit(" <= x"),
			e.fmt.Ints(labels),
			format.Lit(" <= "),
			e.fmt.Floats(upper),
			format.Lit("\n"),
		)
		if err != nil {
			return err
		}
		if err := e.writeMasked(lines, mask); err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
	}
	return nil
}

func (e *encoder) binaries(m *model.Model) error {
	if _, err := e.buf.WriteString("\nbinary\n"); err != nil {
		return err
	}

	for _, name := range m.Binaries.Names() {
		labels, err := table.Field[int64](m.Binaries, name)
		if err != nil {
			return err
		}
		lines, err := e.fmt.Join(format.Lit("x"), e.fmt.Ints(labels), format.Lit("\n"))
		if err != nil {
			return err
		}
		if err := e.writeMasked(lines, table.NotEqual(labels, model.Sentinel)); err != nil {
			return fmt.Errorf("binary %q: %w", name, err)
		}
	}

	_, err := e.buf.WriteString("end\n")
	return err
}

// writeMasked blanks invalid cells, then writes the remaining cells in row-major order.
func (e *encoder) writeMasked(a *table.Array[string], mask *table.Mask) error {
	masked, err := format.Where(a, mask)
	if err != nil {
		return err
	}
	for _, s := range masked.Data() {
		if s == "" {
			continue
		}
		if _, err := e.buf.WriteString(s); err != nil {
			return err
		}
		e.lines++
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
