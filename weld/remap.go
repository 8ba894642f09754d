package weld

import (
	"fmt"

	"github.com/notargets/softweld/utils"
)

// Remap writes m[src[i]] into dst[i]. dst may be src itself. The whole source
// is checked before the first write, so on error dst is left untouched.
func Remap(m IndexMap, src, dst IndexBuffer) error {
	if err := checkLengths(src, dst); err != nil {
		return err
	}
	if err := validateRange(m, src, dst, 0, src.Len()); err != nil {
		return err
	}
	writeRange(m, src, dst, 0, src.Len())
	return nil
}

// RemapGroups is Remap for a buffer of links (Line), faces (Triangle) or
// tetrahedra (Tet); its length must be a whole number of groups.
func RemapGroups(m IndexMap, kind utils.ElementType, src, dst IndexBuffer) error {
	if err := checkArity(kind, src); err != nil {
		return err
	}
	return Remap(m, src, dst)
}

// RemapParallel splits the buffer across np goroutines. All partitions are
// validated before any partition writes.
func RemapParallel(m IndexMap, src, dst IndexBuffer, np int) error {
	if err := checkLengths(src, dst); err != nil {
		return err
	}
	pm := utils.NewPartitionMap(np, src.Len())
	if err := pm.ForEachBucket(func(_, kMin, kMax int) error {
		return validateRange(m, src, dst, kMin, kMax)
	}); err != nil {
		return err
	}
	return pm.ForEachBucket(func(_, kMin, kMax int) error {
		writeRange(m, src, dst, kMin, kMax)
		return nil
	})
}

func checkArity(kind utils.ElementType, src IndexBuffer) error {
	if !kind.IsSimplex() {
		return fmt.Errorf("%s is not a link, face or tetrahedron group", kind)
	}
	if arity := kind.GetNumNodes(); src.Len()%arity != 0 {
		return fmt.Errorf("%s buffer length %d is not a multiple of %d: %w",
			kind, src.Len(), arity, ErrMalformedLength)
	}
	return nil
}

func checkLengths(src, dst IndexBuffer) error {
	if src.Len() != dst.Len() {
		return fmt.Errorf("source has %d indices, destination %d: %w",
			src.Len(), dst.Len(), ErrMalformedLength)
	}
	return nil
}

func validateRange(m IndexMap, src, dst IndexBuffer, kMin, kMax int) error {
	maxValue := dst.MaxValue()
	for i := kMin; i < kMax; i++ {
		v := src.Get(i)
		if v < 0 || v >= len(m) {
			return fmt.Errorf("entry %d references vertex %d, map covers [0,%d): %w",
				i, v, len(m), ErrIndexOutOfRange)
		}
		if m[v] < 0 {
			return fmt.Errorf("vertex %d maps to negative node %d: %w",
				v, m[v], ErrInconsistentMap)
		}
		if m[v] > maxValue {
			return fmt.Errorf("entry %d maps to node %d, destination holds at most %d: %w",
				i, m[v], maxValue, ErrIndexOutOfRange)
		}
	}
	return nil
}

func writeRange(m IndexMap, src, dst IndexBuffer, kMin, kMax int) {
	for i := kMin; i < kMax; i++ {
		dst.Set(i, m[src.Get(i)])
	}
}
