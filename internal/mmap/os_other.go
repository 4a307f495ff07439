//go:build !unix

package mmap

import "os"

func osMapRW(_ *os.File, size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), nil, nil
}

func osAdvise(_ []byte, _ AccessPattern) error {
	return nil
}
