package handler

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/pavelanni/practice/internal/render"
)

var errBadForm = errors.New("malformed form value")

// applyForm copies the submitted widget values of a task form onto its view.
// Order views keep their state server side and take nothing from the form.
func applyForm(v render.View, form url.Values) error {
	switch v := v.(type) {
	case *render.MCQView:
		for i := range v.Items() {
			var picks []int
			for _, s := range form["item-"+strconv.Itoa(i)] {
				c, err := strconv.Atoi(s)
				if err != nil {
					return errBadForm
				}
				picks = append(picks, c)
			}
			if err := v.SetSelection(i, picks); err != nil {
				return err
			}
		}
	case *render.TextView:
		for i := range v.Items() {
			if err := v.SetInput(i, form.Get("item-"+strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case *render.ShortView:
		for i := range v.Items() {
			if err := v.SetInput(i, form.Get("item-"+strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case *render.MatchView:
		for i := range v.Rows() {
			if err := v.Select(i, form.Get("row-"+strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case *render.WritingView:
		done := make(map[int]bool)
		for _, s := range form["crit"] {
			c, err := strconv.Atoi(s)
			if err != nil {
				return errBadForm
			}
			done[c] = true
		}
		for i := range v.Checklist() {
			if err := v.SetDone(i, done[i]); err != nil {
				return err
			}
		}
		v.SetText(form.Get("text"))
	}
	return nil
}
