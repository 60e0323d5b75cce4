///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package storage

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/google/uuid"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/field"
	"gitlab.com/elixxir/sharestore/internal/share"
)

// uintWord encodes a small plain value
func uintWord(f *field.Field, v uint64) []byte {
	return f.Encode(new(saferith.Nat).SetUint64(v))
}

var testTime = time.Unix(1600000000, 0)

func newTestStorage(t *testing.T) *Storage {
	s, err := NewStorage("", "", "", "", "", true)
	if err != nil {
		t.Fatalf("Could not create map storage: %+v", err)
	}
	s.now = func() time.Time { return testTime }
	return s
}

func testData(words ...uint64) []byte {
	f := field.Default()
	data := make([]byte, 0, len(words)*field.WordWidth)
	for _, w := range words {
		data = append(data, uintWord(f, w)...)
	}
	return data
}

func creationDate() share.Tag {
	return share.Tag{
		Key:       share.CreationDateKey,
		Value:     strconv.FormatInt(testTime.UnixNano()/int64(time.Millisecond), 10),
		ValueType: share.LONG,
	}
}

// Happy path: a stored share reads back with its tags and the creation date
func TestStorage_StoreGet(t *testing.T) {
	s := newTestStorage(t)
	secret := &share.SecretShare{
		ID:   uuid.New(),
		Data: testData(1, 2, 3),
		Tags: []share.Tag{
			{Key: "category", Value: "A", ValueType: share.STRING},
			{Key: "size", Value: "12", ValueType: share.LONG},
		},
	}

	id, err := s.StoreSecretShare(secret)
	if err != nil {
		t.Fatalf("Store failed: %+v", err)
	}
	if id != secret.ID {
		t.Errorf("Store returned id %s, expected %s", id, secret.ID)
	}

	got, err := s.GetSecretShare(id)
	if err != nil {
		t.Fatalf("Get failed: %+v", err)
	}
	if !bytes.Equal(got.Data, secret.Data) {
		t.Errorf("Data does not round trip")
	}
	expected := append(share.CopyTags(secret.Tags), creationDate())
	if !reflect.DeepEqual(got.Tags, expected) {
		t.Errorf("Tags do not round trip\n\texpected: %v\n\treceived: %v",
			expected, got.Tags)
	}

	// Returned data never aliases stored data
	got.Data[0] ^= 1
	again, _ := s.GetSecretShare(id)
	if !bytes.Equal(again.Data, secret.Data) {
		t.Errorf("Caller mutation leaked into storage")
	}
}

// Error path: invalid and duplicate shares
func TestStorage_Store_Errors(t *testing.T) {
	s := newTestStorage(t)
	id := uuid.New()
	if _, err := s.StoreSecretShare(&share.SecretShare{ID: id,
		Data: testData(1)}); err != nil {
		t.Fatalf("Store failed: %+v", err)
	}

	cases := []struct {
		secret *share.SecretShare
		kind   fault.Kind
	}{
		{nil, fault.InvalidArgument},
		{&share.SecretShare{ID: uuid.Nil, Data: testData(1)}, fault.InvalidArgument},
		{&share.SecretShare{ID: uuid.New(), Data: make([]byte, 20)}, fault.InvalidArgument},
		{&share.SecretShare{ID: uuid.New()}, fault.InvalidArgument},
		{&share.SecretShare{ID: uuid.New(), Data: testData(1), Tags: []share.Tag{
			{Key: "k", Value: "a", ValueType: share.STRING},
			{Key: "k", Value: "b", ValueType: share.STRING}}}, fault.InvalidArgument},
		{&share.SecretShare{ID: uuid.New(), Data: testData(1), Tags: []share.Tag{
			{Key: "k", Value: "abc", ValueType: share.LONG}}}, fault.InvalidArgument},
		{&share.SecretShare{ID: id, Data: testData(2)}, fault.Conflict},
	}
	for i, c := range cases {
		if _, err := s.StoreSecretShare(c.secret); !fault.Is(err, c.kind) {
			t.Errorf("Case %d: expected %s, got %v", i, c.kind, err)
		}
	}
}

func TestStorage_Store_StripsReservedTags(t *testing.T) {
	s := newTestStorage(t)
	id, err := s.StoreSecretShare(&share.SecretShare{
		ID:   uuid.New(),
		Data: testData(1),
		Tags: []share.Tag{{Key: share.CreationDateKey, Value: "1",
			ValueType: share.LONG}},
	})
	if err != nil {
		t.Fatalf("Store failed: %+v", err)
	}
	tags, _ := s.GetTags(id)
	if !reflect.DeepEqual(tags, []share.Tag{creationDate()}) {
		t.Errorf("Client supplied creation date was kept: %v", tags)
	}
}

func TestStorage_Delete(t *testing.T) {
	s := newTestStorage(t)
	id, _ := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
		Data: testData(1)})

	if err := s.DeleteSecretShare(id); err != nil {
		t.Fatalf("Delete failed: %+v", err)
	}
	if _, err := s.GetSecretShare(id); !fault.Is(err, fault.NotFound) {
		t.Errorf("Deleted share still found: %v", err)
	}
	if err := s.DeleteSecretShare(id); !fault.Is(err, fault.NotFound) {
		t.Errorf("Second delete should not find the share, got %v", err)
	}
}

// Happy path: tags round trip through create, put and get
func TestStorage_Tags(t *testing.T) {
	s := newTestStorage(t)
	id, _ := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
		Data: testData(1)})

	tag := share.Tag{Key: "k", Value: "v", ValueType: share.STRING}
	if err := s.CreateTag(id, tag); err != nil {
		t.Fatalf("CreateTag failed: %+v", err)
	}
	got, err := s.GetTag(id, "k")
	if err != nil {
		t.Fatalf("GetTag failed: %+v", err)
	}
	if !reflect.DeepEqual(got, tag) {
		t.Errorf("Tag does not round trip: %v vs %v", got, tag)
	}

	if err = s.CreateTag(id, tag); !fault.Is(err, fault.Conflict) {
		t.Errorf("Creating an existing tag should conflict, got %v", err)
	}

	updated := share.Tag{Key: "k", Value: "42", ValueType: share.LONG}
	if err = s.PutTag(id, "k", updated); err != nil {
		t.Fatalf("PutTag failed: %+v", err)
	}
	got, _ = s.GetTag(id, "k")
	if !reflect.DeepEqual(got, updated) {
		t.Errorf("PutTag did not update the tag: %v", got)
	}

	added := share.Tag{Key: "new", Value: "x", ValueType: share.STRING}
	if err = s.PutTag(id, "new", added); err != nil {
		t.Fatalf("PutTag of a new key failed: %+v", err)
	}
	tags, _ := s.GetTags(id)
	if !reflect.DeepEqual(tags, []share.Tag{creationDate(), updated, added}) {
		t.Errorf("Unexpected tags: %v", tags)
	}

	if err = s.DeleteTag(id, "new"); err != nil {
		t.Errorf("DeleteTag failed: %+v", err)
	}
	if err = s.DeleteTag(id, "new"); !fault.Is(err, fault.NotFound) {
		t.Errorf("Deleting a missing tag should not find it, got %v", err)
	}
	if _, err = s.GetTag(id, "new"); !fault.Is(err, fault.NotFound) {
		t.Errorf("Deleted tag still found")
	}
	if _, err = s.GetTags(uuid.New()); !fault.Is(err, fault.NotFound) {
		t.Errorf("Tags of an unknown secret should not be found")
	}
}

// Error path: the key in the path and the tag key differ
func TestStorage_PutTag_KeyMismatch(t *testing.T) {
	s := newTestStorage(t)
	id, _ := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
		Data: testData(1)})

	err := s.PutTag(id, "k", share.Tag{Key: "k2", Value: "v",
		ValueType: share.STRING})
	if !fault.Is(err, fault.InvalidArgument) {
		t.Fatalf("Expected invalid argument, got %v", err)
	}
	if !strings.Contains(err.Error(), `"k"`) || !strings.Contains(err.Error(), `"k2"`) {
		t.Errorf("Error should name both keys: %s", err)
	}
}

func TestStorage_ReservedTags(t *testing.T) {
	s := newTestStorage(t)
	id, _ := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
		Data: testData(1)})
	reserved := share.Tag{Key: share.CreationDateKey, Value: "1",
		ValueType: share.LONG}

	if err := s.CreateTag(id, reserved); !fault.Is(err, fault.InvalidArgument) {
		t.Errorf("Creating a reserved tag should be invalid, got %v", err)
	}
	if err := s.PutTag(id, reserved.Key, reserved); !fault.Is(err, fault.InvalidArgument) {
		t.Errorf("Putting a reserved tag should be invalid, got %v", err)
	}
	if err := s.DeleteTag(id, reserved.Key); !fault.Is(err, fault.InvalidArgument) {
		t.Errorf("Deleting a reserved tag should be invalid, got %v", err)
	}
}

func TestStorage_ReplaceTags(t *testing.T) {
	s := newTestStorage(t)
	id, _ := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
		Data: testData(1), Tags: []share.Tag{
			{Key: "old", Value: "1", ValueType: share.STRING}}})

	replacement := []share.Tag{
		{Key: "a", Value: "1", ValueType: share.STRING},
		{Key: "b", Value: "2", ValueType: share.LONG},
	}
	if err := s.ReplaceTags(id, replacement); err != nil {
		t.Fatalf("ReplaceTags failed: %+v", err)
	}
	tags, _ := s.GetTags(id)
	expected := append(share.CopyTags(replacement), creationDate())
	if !reflect.DeepEqual(tags, expected) {
		t.Errorf("Unexpected tags after replace\n\texpected: %v\n\treceived: %v",
			expected, tags)
	}

	if err := s.ReplaceTags(id, nil); !fault.Is(err, fault.InvalidArgument) {
		t.Errorf("Empty replacement should be invalid, got %v", err)
	}
	if err := s.ReplaceTags(uuid.New(), replacement); !fault.Is(err, fault.NotFound) {
		t.Errorf("Replacing tags of an unknown secret should not find it, got %v", err)
	}
}

// Three of five secrets match category==A; two per page gives pages of two
// and one
func TestStorage_ListMetadata_Paged(t *testing.T) {
	s := newTestStorage(t)
	categories := []string{"A", "B", "A", "A", "C"}
	for i, c := range categories {
		_, err := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
			Data: testData(uint64(i)), Tags: []share.Tag{
				{Key: "category", Value: c, ValueType: share.STRING},
				{Key: "index", Value: strconv.Itoa(i), ValueType: share.LONG}}})
		if err != nil {
			t.Fatalf("Store %d failed: %+v", i, err)
		}
	}

	filters, err := share.ParseTagFilters("category==A")
	if err != nil {
		t.Fatalf("Could not parse filter: %+v", err)
	}
	sort := share.NewSort("index", "ASC")

	first, err := s.ListMetadata(filters, sort, share.NewPageRequest(0, 2))
	if err != nil {
		t.Fatalf("List failed: %+v", err)
	}
	second, err := s.ListMetadata(filters, sort, share.NewPageRequest(1, 2))
	if err != nil {
		t.Fatalf("List failed: %+v", err)
	}

	if len(first.Content) != 2 || len(second.Content) != 1 {
		t.Errorf("Expected pages of 2 and 1, got %d and %d",
			len(first.Content), len(second.Content))
	}
	for _, p := range []share.Page{first, second} {
		if p.TotalElements != 3 || p.TotalPages != 2 {
			t.Errorf("Expected 3 elements on 2 pages, got %d on %d",
				p.TotalElements, p.TotalPages)
		}
	}

	var order []string
	for _, p := range []share.Page{first, second} {
		for _, md := range p.Content {
			tag, _ := share.FindTag(md.Tags, "index")
			order = append(order, tag.Value)
		}
	}
	if !reflect.DeepEqual(order, []string{"0", "2", "3"}) {
		t.Errorf("Unexpected order %v", order)
	}
}

func TestStorage_ListMetadata_Unpaged(t *testing.T) {
	s := newTestStorage(t)
	for i := 0; i < 4; i++ {
		_, _ = s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
			Data: testData(1), Tags: []share.Tag{
				{Key: "index", Value: strconv.Itoa(i * 10), ValueType: share.LONG}}})
	}
	filters, _ := share.ParseTagFilters("index>5,index<30")
	page, err := s.ListMetadata(filters, share.NewSort("index", "DESC"),
		share.NewPageRequest(0, 0))
	if err != nil {
		t.Fatalf("List failed: %+v", err)
	}
	if page.TotalElements != 2 || page.TotalPages != 1 || len(page.Content) != 2 {
		t.Fatalf("Unexpected page %+v", page)
	}
	tag, _ := share.FindTag(page.Content[0].Tags, "index")
	if tag.Value != "20" {
		t.Errorf("Descending order should start with 20, got %s", tag.Value)
	}
}

// Error path: a page far past the end is empty rather than a failure
func TestStorage_ListMetadata_HugePage(t *testing.T) {
	s := newTestStorage(t)
	for i := 0; i < 5; i++ {
		_, _ = s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
			Data: testData(uint64(i))})
	}
	page, err := s.ListMetadata(nil, share.Sort{}, share.NewPageRequest(1<<62, 3))
	if err != nil {
		t.Fatalf("List failed: %+v", err)
	}
	if len(page.Content) != 0 || page.TotalElements != 5 {
		t.Errorf("Expected an empty page of 5 elements, got %+v", page)
	}
}

type mockClaimer struct {
	masks  map[uuid.UUID][][]byte
	claims int
}

func (m *mockClaimer) ClaimInputMasks(id uuid.UUID, count int) ([][]byte, error) {
	m.claims++
	masks, ok := m.masks[id]
	if !ok {
		return nil, fault.NotFoundf("no masks for %s", id)
	}
	if len(masks) != count {
		return nil, fault.InvalidArgumentf("count mismatch")
	}
	delete(m.masks, id)
	return masks, nil
}

// Happy path: player 0 keeps masked - mask
func TestStorage_CreateFromMaskedInput(t *testing.T) {
	f := field.Default()
	s := newTestStorage(t)
	id := uuid.New()
	claimer := &mockClaimer{masks: map[uuid.UUID][][]byte{
		id: {uintWord(f, 5), uintWord(f, 6)},
	}}
	s.SetMaskedInputs(f, 0, claimer, nil)

	input := &share.MaskedInput{
		ID:   id,
		Data: [][]byte{uintWord(f, 15), uintWord(f, 106)},
		Tags: []share.Tag{{Key: "k", Value: "v", ValueType: share.STRING}},
	}
	if _, err := s.CreateSecretShareFromMaskedInput(input); err != nil {
		t.Fatalf("Create failed: %+v", err)
	}
	got, err := s.GetSecretShare(id)
	if err != nil {
		t.Fatalf("Get failed: %+v", err)
	}
	if !bytes.Equal(got.Data, testData(10, 100)) {
		t.Errorf("Unexpected unmasked share")
	}

	// The id now exists, masks are not claimed again
	if _, err = s.CreateSecretShareFromMaskedInput(input); !fault.Is(err, fault.Conflict) {
		t.Errorf("Expected conflict, got %v", err)
	}
	if claimer.claims != 1 {
		t.Errorf("Masks were claimed %d times", claimer.claims)
	}
}

func TestStorage_CreateFromMaskedInput_Errors(t *testing.T) {
	f := field.Default()
	s := newTestStorage(t)
	claimer := &mockClaimer{masks: map[uuid.UUID][][]byte{}}
	s.SetMaskedInputs(f, 1, claimer, nil)

	inputs := []*share.MaskedInput{
		nil,
		{ID: uuid.New()},
		{ID: uuid.New(), Data: [][]byte{make([]byte, 8)}},
	}
	for i, in := range inputs {
		if _, err := s.CreateSecretShareFromMaskedInput(in); !fault.Is(err, fault.InvalidArgument) {
			t.Errorf("Case %d: expected invalid argument, got %v", i, err)
		}
	}
	if claimer.claims != 0 {
		t.Errorf("Invalid inputs claimed masks")
	}

	_, err := s.CreateSecretShareFromMaskedInput(&share.MaskedInput{
		ID: uuid.New(), Data: [][]byte{uintWord(f, 1)}})
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("Input without reserved masks should not be found, got %v", err)
	}
}

func TestAdditiveUnmask(t *testing.T) {
	f := field.Default()
	x := uintWord(f, 77)
	masks := [][]byte{uintWord(f, 3), uintWord(f, 1000), uintWord(f, 12)}
	r := make([]byte, field.WordWidth)
	for _, m := range masks {
		r, _ = f.Add(r, m)
	}
	masked, _ := f.Add(x, r)

	sum := make([]byte, field.WordWidth)
	for player, m := range masks {
		s, err := AdditiveUnmask(f, player, masked, m)
		if err != nil {
			t.Fatalf("Unmask failed: %+v", err)
		}
		sum, _ = f.Add(sum, s)
	}
	if !bytes.Equal(sum, x) {
		t.Errorf("Shares do not reconstruct the input")
	}
}

// Concurrent tag updates on one secret are all applied
func TestStorage_ConcurrentTags(t *testing.T) {
	s := newTestStorage(t)
	id, _ := s.StoreSecretShare(&share.SecretShare{ID: uuid.New(),
		Data: testData(1)})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k" + strconv.Itoa(i)
			if err := s.PutTag(id, key, share.Tag{Key: key, Value: "v",
				ValueType: share.STRING}); err != nil {
				t.Errorf("PutTag %d failed: %+v", i, err)
			}
		}(i)
	}
	wg.Wait()
	tags, _ := s.GetTags(id)
	if len(tags) != 21 {
		t.Errorf("Expected 21 tags, got %d", len(tags))
	}
}
