package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/app/session"
	pageurl "github.com/bnema/gregify/internal/domain/url"
)

const defaultTabID = "tab-1"

// pageFlags select the host page a command opens.
type pageFlags struct {
	url  string
	html string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "https://chatgpt.com/", "address the page is served from")
	cmd.Flags().StringVar(&f.html, "page", "", "HTML file to open instead of the bundled chat page")
}

// open opens the selected page in s.
func (f *pageFlags) open(s *session.Session) (*session.Tab, error) {
	addr := pageurl.Normalize(f.url)
	if pageurl.ExtractDomain(addr) == "" {
		return nil, fmt.Errorf("invalid --url %q", f.url)
	}
	page := session.ChatPage(defaultTabID, addr)
	if f.html != "" {
		data, err := os.ReadFile(f.html)
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
		page.HTML = string(data)
		page.Scripts = nil
	}
	return s.Open(page)
}
