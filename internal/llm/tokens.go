package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenizerCache   = make(map[string]*tiktoken.Tiktoken)
	tokenizerCacheMu sync.Mutex
)

func tokenizer(model string) (*tiktoken.Tiktoken, error) {
	tokenizerCacheMu.Lock()
	defer tokenizerCacheMu.Unlock()

	if tkm, ok := tokenizerCache[model]; ok {
		return tkm, nil
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// unknown model names fall back to the GPT-4 family encoding
		tkm, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	tokenizerCache[model] = tkm
	return tkm, nil
}

// EstimateTokens approximates the prompt size of a chat request, counting the
// fixed per-message overhead the chat format adds.
func EstimateTokens(model string, p Prompt) (int, error) {
	tkm, err := tokenizer(model)
	if err != nil {
		return 0, err
	}

	const tokensPerMessage = 3
	n := 3 // reply priming
	for _, content := range []string{p.System, p.User} {
		if content == "" {
			continue
		}
		n += tokensPerMessage + len(tkm.Encode(content, nil, nil))
	}
	return n, nil
}
