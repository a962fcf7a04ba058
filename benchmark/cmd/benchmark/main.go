// Command benchmark measures inference throughput of image models across the
// ONNX Runtime, TensorFlow Lite and Gorgonia back-ends.
package main

func main() {
	Execute()
}
