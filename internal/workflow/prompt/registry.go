package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptOutlineV1         PromptID = "outline_v1"
	PromptIntroV1           PromptID = "intro_v1"
	PromptSectionV1         PromptID = "section_v1"
	PromptConclusionV1      PromptID = "conclusion_v1"
	PromptCTAV1             PromptID = "cta_v1"
	PromptMetaDescriptionV1 PromptID = "meta_description_v1"
	PromptMetaKeywordsV1    PromptID = "meta_keywords_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptOutlineV1:
		return "templates/outline_v1.system.txt", "templates/outline_v1.user.txt", nil
	case PromptIntroV1:
		return "templates/intro_v1.system.txt", "templates/intro_v1.user.txt", nil
	case PromptSectionV1:
		return "templates/section_v1.system.txt", "templates/section_v1.user.txt", nil
	case PromptConclusionV1:
		return "templates/conclusion_v1.system.txt", "templates/conclusion_v1.user.txt", nil
	case PromptCTAV1:
		return "templates/cta_v1.system.txt", "templates/cta_v1.user.txt", nil
	case PromptMetaDescriptionV1:
		return "templates/meta_description_v1.system.txt", "templates/meta_description_v1.user.txt", nil
	case PromptMetaKeywordsV1:
		return "templates/meta_keywords_v1.system.txt", "templates/meta_keywords_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
