package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLEscapesSegments(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/imgs/products/s1/p1/a.png",
		PublicURL("imgs", "products/s1/p1/a.png"))
	assert.Equal(t, "https://storage.googleapis.com/imgs/products/my%20store/p%3F1.jpg",
		PublicURL("imgs", "products/my store/p?1.jpg"))
}
