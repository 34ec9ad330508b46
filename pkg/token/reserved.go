package token

var keywordNames = map[Kind]string{
	ABSTRACT:    "abstract",
	BOOLEAN:     "boolean",
	BREAK:       "break",
	BYTE:        "byte",
	CASE:        "case",
	CATCH:       "catch",
	CHAR:        "char",
	CLASS:       "class",
	CONST:       "const",
	CONTINUE:    "continue",
	DEFAULT:     "default",
	DO:          "do",
	DOUBLE:      "double",
	ELSE:        "else",
	ENUM:        "enum",
	EXTENDS:     "extends",
	FALSE:       "false",
	FINAL:       "final",
	FLOAT:       "float",
	FOR:         "for",
	IF:          "if",
	IMPORT:      "import",
	INT:         "int",
	INTERFACE:   "interface",
	LONG:        "long",
	NEW:         "new",
	NIL:         "nil",
	NUMBER_TYPE: "number",
	PACKAGE:     "package",
	PRIVATE:     "private",
	PUBLIC:      "public",
	RETURN:      "return",
	SHORT:       "short",
	STATIC:      "static",
	STRING:      "string",
	SWITCH:      "switch",
	THIS:        "this",
	THROW:       "throw",
	TRUE:        "true",
	TRY:         "try",
	VOID:        "void",
	WHILE:       "while",
	YIELD:       "yield",
}

// Keywords returns every reserved word in kind order.
func Keywords() []string {
	words := make([]string, 0, len(keywordNames))
	for k := keywordStart + 1; k < keywordEnd; k++ {
		words = append(words, keywordNames[k])
	}
	return words
}

// trieNode is one level of the reserved-word trie. Children are indexed by the
// lowercase letter so lookups never allocate.
type trieNode struct {
	children [26]*trieNode
	kind     Kind
}

type Trie struct {
	root trieNode
}

func NewTrie() *Trie {
	return &Trie{}
}

func (t *Trie) Insert(word string, kind Kind) {
	node := &t.root
	for i := 0; i < len(word); i++ {
		idx, ok := letterIndex(word[i])
		if !ok {
			return
		}
		if node.children[idx] == nil {
			node.children[idx] = &trieNode{}
		}
		node = node.children[idx]
	}
	node.kind = kind
}

// Lookup returns the reserved kind for word, or WORD when word is not reserved.
func (t *Trie) Lookup(word string) Kind {
	node := &t.root
	for i := 0; i < len(word); i++ {
		idx, ok := letterIndex(word[i])
		if !ok {
			return WORD
		}
		node = node.children[idx]
		if node == nil {
			return WORD
		}
	}
	if node.kind.IsKeyword() {
		return node.kind
	}
	return WORD
}

func letterIndex(ch byte) (int, bool) {
	if ch >= 'a' && ch <= 'z' {
		return int(ch - 'a'), true
	}
	return 0, false
}

// Hash is the djb2 variant (h*33 + c, seed 5381) the hashed keyword table is built with.
func Hash(word string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(word); i++ {
		h = h*33 + uint64(word[i])
	}
	return h
}

var (
	reservedTrie   = NewTrie()
	reservedHashes = make(map[uint64]Kind, len(keywordNames))
)

func init() {
	for kind, word := range keywordNames {
		reservedTrie.Insert(word, kind)
		reservedHashes[Hash(word)] = kind
	}
}

// LookupKeyword resolves word with an exact trie match.
func LookupKeyword(word string) Kind {
	return reservedTrie.Lookup(word)
}

// LookupKeywordHash resolves word by comparing its djb2 hash against the
// keyword table. There is no collision check: an identifier whose hash equals a
// keyword's hash is reported as that keyword.
func LookupKeywordHash(word string) Kind {
	if kind, ok := reservedHashes[Hash(word)]; ok {
		return kind
	}
	return WORD
}
