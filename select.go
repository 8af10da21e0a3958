package htmlunit

import (
	"errors"
	"fmt"
	"strings"
)

// SelectElement wraps a <select> element with dropdown operations. It only
// uses the WebElement interface, so it works with any driver.
type SelectElement struct {
	element WebElement
	isMulti bool
}

// Select wraps el, which must be a <select> element.
func Select(el WebElement) (*SelectElement, error) {
	tag, err := el.TagName()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(tag, "select") {
		return nil, newError(ErrInvalidArgument, `element should have been "select" but was %q`, tag)
	}
	multiple, err := el.GetAttribute("multiple")
	switch {
	case errors.Is(err, ErrNullValue):
	case err != nil:
		return nil, err
	}
	return &SelectElement{
		element: el,
		isMulti: err == nil && !strings.EqualFold(multiple, "false"),
	}, nil
}

// Element returns the wrapped element.
func (s *SelectElement) Element() WebElement {
	return s.element
}

// IsMultiple reports whether the select accepts several selected options.
func (s *SelectElement) IsMultiple() bool {
	return s.isMulti
}

// Options returns the options of the select in document order.
func (s *SelectElement) Options() ([]WebElement, error) {
	return s.element.FindElements(ByTagName, "option")
}

// SelectedOptions returns the selected options.
func (s *SelectElement) SelectedOptions() ([]WebElement, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	var selected []WebElement
	for _, o := range opts {
		ok, err := o.IsSelected()
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, o)
		}
	}
	return selected, nil
}

// FirstSelectedOption returns the first selected option.
func (s *SelectElement) FirstSelectedOption() (WebElement, error) {
	opts, err := s.SelectedOptions()
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, newError(ErrNoSuchElement, "no option is selected")
	}
	return opts[0], nil
}

// SelectByVisibleText selects the options whose text is text, ignoring
// surrounding and repeated whitespace. A single select takes the first.
func (s *SelectElement) SelectByVisibleText(text string) error {
	opts, err := s.byText(text)
	if err != nil {
		return err
	}
	return s.selectAll(opts, true)
}

// SelectByValue selects the options whose value attribute is value.
func (s *SelectElement) SelectByValue(value string) error {
	opts, err := s.byValue(value)
	if err != nil {
		return err
	}
	return s.selectAll(opts, true)
}

// SelectByIndex selects the option at position index, counting from zero.
func (s *SelectElement) SelectByIndex(index int) error {
	opt, err := s.byIndex(index)
	if err != nil {
		return err
	}
	return setSelected(opt, true)
}

// DeselectAll clears the selection of a multiple select.
func (s *SelectElement) DeselectAll() error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	opts, err := s.Options()
	if err != nil {
		return err
	}
	return s.selectAll(opts, false)
}

// DeselectByValue deselects the options whose value attribute is value.
func (s *SelectElement) DeselectByValue(value string) error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	opts, err := s.byValue(value)
	if err != nil {
		return err
	}
	return s.selectAll(opts, false)
}

// DeselectByIndex deselects the option at position index.
func (s *SelectElement) DeselectByIndex(index int) error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	opt, err := s.byIndex(index)
	if err != nil {
		return err
	}
	return setSelected(opt, false)
}

// DeselectByVisibleText deselects the options whose text is text.
func (s *SelectElement) DeselectByVisibleText(text string) error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	opts, err := s.byText(text)
	if err != nil {
		return err
	}
	return s.selectAll(opts, false)
}

func (s *SelectElement) checkMulti() error {
	if !s.isMulti {
		return newError(ErrUnsupportedOperation, "you may only deselect options of a multi-select")
	}
	return nil
}

// selectAll sets the state of opts. A single select stops after the first.
func (s *SelectElement) selectAll(opts []WebElement, selected bool) error {
	for _, o := range opts {
		if err := setSelected(o, selected); err != nil {
			return err
		}
		if selected && !s.isMulti {
			return nil
		}
	}
	return nil
}

func (s *SelectElement) byText(text string) ([]WebElement, error) {
	opts, err := s.element.FindElements(ByXPATH, ".//option[normalize-space(.) = "+xpathLiteral(strings.Join(strings.Fields(text), " "))+"]")
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, newError(ErrNoSuchElement, "cannot locate option with text %q", text)
	}
	return opts, nil
}

func (s *SelectElement) byValue(value string) ([]WebElement, error) {
	opts, err := s.element.FindElements(ByXPATH, ".//option[@value = "+xpathLiteral(value)+"]")
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, newError(ErrNoSuchElement, "cannot locate option with value %q", value)
	}
	return opts, nil
}

func (s *SelectElement) byIndex(index int) (WebElement, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(opts) {
		return nil, newError(ErrNoSuchElement, "cannot locate option with index %d", index)
	}
	return opts[index], nil
}

func setSelected(option WebElement, selected bool) error {
	sel, err := option.IsSelected()
	if err != nil {
		return err
	}
	if sel != selected {
		return option.Click()
	}
	return nil
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no
// escapes, so strings holding both quote kinds are built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = fmt.Sprintf(`"%s"`, p)
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}
