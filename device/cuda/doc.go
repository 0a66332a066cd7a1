// Package cuda binds the CUDA runtime and a native KNN kernel library without
// cgo, loading both with purego at run time.
//
// The kernel library must export
//
//	void knn_device(float *ref, int ref_nb, float *query, int query_nb,
//	                int dim, int k, float *dist, int *ind, cudaStream_t stream);
//
// computing, for one batch element, the k nearest references of every query
// into ind (k×query_nb, 0-based indices) and leaving the matching sorted
// distances in the first k rows of dist (pitch query_nb).
//
// Tensors handed to a Device must live in CUDA managed memory; NewTensor
// allocates them. On platforms without dlopen support Open returns
// device.ErrUnavailable.
package cuda
