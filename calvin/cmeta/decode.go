package cmeta

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"affy-calvin/calvin/cbytes"
	"affy-calvin/calvin/cstring"
)

func DecodeTriplet(reader *cbytes.Reader) (*Triplet, error) {
	name, err := cstring.DecodeWide(reader)
	if err != nil {
		return nil, errors.Wrap(err, "DecodeTriplet error: name")
	}
	value, err := cstring.DecodeASCII(reader)
	if err != nil {
		return nil, errors.Wrapf(err, `DecodeTriplet error: value of "%s"`, name)
	}
	mimeType, err := cstring.DecodeWide(reader)
	if err != nil {
		return nil, errors.Wrapf(err, `DecodeTriplet error: type of "%s"`, name)
	}
	return &Triplet{
		Name:     name,
		Value:    value,
		MimeType: mimeType,
	}, nil
}

// DecodeBlock reads an int32 count followed by that many triplets.
func DecodeBlock(reader *cbytes.Reader) ([]Triplet, error) {
	count, err := reader.ReadInt32()
	if err != nil {
		return nil, errors.Wrap(err, "DecodeBlock error: read metadata count")
	}
	return DecodeTriplets(reader, int64(count))
}

func DecodeTriplets(reader *cbytes.Reader, count int64) ([]Triplet, error) {
	if err := reader.CheckCount("metadata count", count); err != nil {
		return nil, errors.Wrap(err, "DecodeTriplets error")
	}
	triplets := make([]Triplet, 0, min(count, cbytes.PreallocCeiling))
	for i := int64(0); i < count; i++ {
		triplet, err := DecodeTriplet(reader)
		if err != nil {
			return nil, errors.Wrapf(err, "DecodeTriplets error: triplet %d of %d", i, count)
		}
		triplets = append(triplets, *triplet)
	}
	return triplets, nil
}

// FindByName returns the first triplet named name. Names are not unique.
func FindByName(triplets []Triplet, name string) (Triplet, bool) {
	return lo.Find(triplets, func(triplet Triplet) bool {
		return triplet.Name.Equal(name)
	})
}
