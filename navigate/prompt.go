package navigate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed before each token is read
const Prompt = "Input: "

// Run shows the current entry, then reads tokens from r until q or EOF,
// showing the entry again after every understood token.  Tokens that are
// not understood are reported on w and the prompt repeats.
//
// An error from show ends the loop and is returned.
func Run(r io.Reader, w io.Writer, nav *Navigator, show func(int) error) error {
	if err := show(nav.Current()); err != nil {
		return err
	}
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, Prompt)
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}
		val := sc.Text()
		switch nav.Step(val) {
		case Quit:
			return nil
		case Invalid:
			fmt.Fprintf(w, "Value %s not recognized\n", strings.TrimSpace(val))
			continue
		}
		if err := show(nav.Current()); err != nil {
			return err
		}
	}
}
