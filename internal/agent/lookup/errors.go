package lookup

import "errors"

var errEmptyEmbedding = errors.New("embedder returned no vectors")
