///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package field

import "github.com/pkg/errors"

// CheckLength returns an error unless data holds a positive number of whole
// words
func CheckLength(data []byte) error {
	if len(data) == 0 {
		return errors.New("data must not be empty")
	}
	if len(data)%WordWidth != 0 {
		return errors.Errorf("data length %d is not a multiple of the word "+
			"width %d", len(data), WordWidth)
	}
	return nil
}

// WordCount returns the number of words in data, which must pass CheckLength
func WordCount(data []byte) int {
	return len(data) / WordWidth
}

// Split cuts data into words. The returned words alias data.
func Split(data []byte) ([][]byte, error) {
	if err := CheckLength(data); err != nil {
		return nil, err
	}
	words := make([][]byte, 0, WordCount(data))
	for i := 0; i < len(data); i += WordWidth {
		words = append(words, data[i:i+WordWidth:i+WordWidth])
	}
	return words, nil
}

// Join concatenates words into a fresh buffer
func Join(words [][]byte) []byte {
	data := make([]byte, 0, len(words)*WordWidth)
	for _, w := range words {
		data = append(data, w...)
	}
	return data
}
