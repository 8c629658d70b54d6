// Package translate renders user facing messages in the caller's locale.
//
// The locale comes from the environment, and FLASHASM_LANG takes
// precedence over it when set.
package translate

import (
	"os"

	"github.com/golang/glog"
	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ENV_LANG = "FLASHASM_LANG"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		glog.Warningf("flashasm: locale: %v", err)
	}

	if lang := os.Getenv(ENV_LANG); len(lang) != 0 {
		locales = append([]string{lang}, locales...)
	}

	SetLanguage(locales...)
}

// SetLanguage selects the message language from a preference list of
// BCP 47 names, falling back to en-US.
func SetLanguage(locales ...string) (tag language.Tag) {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	tag = message.MatchLanguage(locales...)
	printer = message.NewPrinter(tag)

	glog.V(2).Infof("flashasm: language %v", tag)
	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
