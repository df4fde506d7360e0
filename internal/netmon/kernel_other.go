//go:build !linux

package netmon

func CheckKernel() {}
