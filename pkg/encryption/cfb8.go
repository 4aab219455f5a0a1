package encryption

import "crypto/cipher"

// cfb8 is 8-bit cipher feedback over a block cipher. The shift register
// lives in a double-width buffer so shifting is a slice move instead of a
// copy per byte; it is compacted once the window reaches the end.
type cfb8 struct {
	block   cipher.Block
	reg     []byte
	off     int
	out     []byte
	decrypt bool
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	bs := block.BlockSize()
	if len(iv) != bs {
		panic("encryption: iv length must equal block size")
	}
	c := &cfb8{
		block:   block,
		reg:     make([]byte, bs*2),
		out:     make([]byte, bs),
		decrypt: decrypt,
	}
	copy(c.reg, iv)
	return c
}

// XORKeyStream implements cipher.Stream. dst and src may overlap entirely.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("encryption: output smaller than input")
	}
	bs := len(c.out)
	for i, b := range src {
		c.block.Encrypt(c.out, c.reg[c.off:c.off+bs])
		x := b ^ c.out[0]
		dst[i] = x

		if c.off == bs {
			copy(c.reg, c.reg[bs:])
			c.off = 0
		}
		// the ciphertext byte is what feeds back in both directions
		if c.decrypt {
			c.reg[c.off+bs] = b
		} else {
			c.reg[c.off+bs] = x
		}
		c.off++
	}
}
