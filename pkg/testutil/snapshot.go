package testutil

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/image"
	"github.com/stretchr/testify/require"
)

// Snapshot describes System (pid 4), smss.exe (pid 256) and lsass.exe
// (pid 512). lsass.exe has no readable PEB or handle table; smss.exe has
// an unreadable session id and a thread list that cycles back on itself.
const Snapshot = `
profile: nt/GUID/F8E2A8B5C9B74BF4A6E4A48F180099942
types:
  _EPROCESS: [_KPROCESS]
  _ETHREAD: [_KTHREAD]
process_head: 0xfffff80002c4b940
kernel_modules:
  - name: nt
    base: 0xfffff80002a00000
    size: 0x5e0000
    exports:
      - {name: PspSystemThreadStartup, address: 0xfffff80002a06000}
      - {name: KiStartSystemThread, address: 0xfffff80002a05000}
structs:
  - offset: 0xfffff80002c4b940
    type: _LIST_ENTRY
    fields:
      ActiveProcessLinks: {ptr: 0xfffffa8000c9e040, type: _EPROCESS}

  - offset: 0xfffffa8000c9e040
    type: _EPROCESS
    fields:
      UniqueProcessId: 4
      InheritedFromUniqueProcessId: 0
      ImageFileName: System
      ActiveThreads: 1
      ObjectTable: {ptr: 0xfffff8a000001000, type: _HANDLE_TABLE}
      SessionId: null
      IsWow64: false
      CreateTime: {win_time: 1336466470}
      ExitTime: {win_time: 0}
      Peb: {ptr: 0, type: _PEB}
      ThreadListHead: {ptr: 0xfffffa8000c9f060, type: _ETHREAD}
      ActiveProcessLinks: {ptr: 0xfffffa8001a3b060, type: _EPROCESS}
  - offset: 0xfffff8a000001000
    type: _HANDLE_TABLE
    fields:
      HandleCount: 502
  - offset: 0xfffffa8000c9f060
    type: _ETHREAD
    fields:
      Cid: {struct: _CLIENT_ID, fields: {UniqueProcess: 4, UniqueThread: 8}}
      StartAddress: {addr: 0xfffff80002a05010}
      Win32StartAddress: {addr: 0xfffff80002a05010}
      ThreadListEntry: {ptr: 0, type: _ETHREAD}

  - offset: 0xfffffa8001a3b060
    type: _EPROCESS
    fields:
      UniqueProcessId: 256
      InheritedFromUniqueProcessId: 4
      ImageFileName: smss.exe
      ActiveThreads: 2
      ObjectTable: {ptr: 0xfffff8a000002000, type: _HANDLE_TABLE}
      SessionId: null
      IsWow64: false
      CreateTime: {win_time: 1336466480}
      ExitTime: {win_time: 0}
      Peb: {ptr: 0x7fffffdf000, type: _PEB}
      ThreadListHead: {ptr: 0xfffffa8001a3c060, type: _ETHREAD}
      ActiveProcessLinks: {ptr: 0xfffffa8001b45060, type: _EPROCESS}
  - offset: 0xfffff8a000002000
    type: _HANDLE_TABLE
    fields:
      HandleCount: 29
  - offset: 0x7fffffdf000
    type: _PEB
    fields:
      ProcessParameters: {ptr: 0x3a1000, type: _RTL_USER_PROCESS_PARAMETERS}
      Ldr: {ptr: 0x77c92640, type: _PEB_LDR_DATA}
      CSDVersion: Service Pack 1
  - offset: 0x3a1000
    type: _RTL_USER_PROCESS_PARAMETERS
    fields:
      CommandLine: \SystemRoot\System32\smss.exe
  - offset: 0x77c92640
    type: _PEB_LDR_DATA
    fields:
      InLoadOrderModuleList: {ptr: 0x3a2000, type: _LDR_DATA_TABLE_ENTRY}
  - offset: 0x3a2000
    type: _LDR_DATA_TABLE_ENTRY
    fields:
      DllBase: {addr: 0x48000000}
      SizeOfImage: 0x20000
      LoadReason: StaticDependency
      FullDllName: \SystemRoot\System32\smss.exe
      InLoadOrderLinks: {ptr: 0x3a3000, type: _LDR_DATA_TABLE_ENTRY}
  - offset: 0x3a3000
    type: _LDR_DATA_TABLE_ENTRY
    fields:
      DllBase: {addr: 0x77c70000}
      SizeOfImage: 0x1a9000
      LoadReason: null
      LoadCount: 65535
      FullDllName: C:\Windows\SYSTEM32\ntdll.dll
      InLoadOrderLinks: {ptr: 0x3a2000, type: _LDR_DATA_TABLE_ENTRY}
  - offset: 0xfffffa8001a3c060
    type: _ETHREAD
    fields:
      Cid: {struct: _CLIENT_ID, fields: {UniqueProcess: 256, UniqueThread: 260}}
      StartAddress: {addr: 0x77c70100}
      Win32StartAddress: {addr: 0x48001000}
      ThreadListEntry: {ptr: 0xfffffa8001a3d060, type: _ETHREAD}
  - offset: 0xfffffa8001a3d060
    type: _ETHREAD
    fields:
      Cid: {struct: _CLIENT_ID, fields: {UniqueProcess: 256, UniqueThread: 264}}
      StartAddress: {addr: 0x10}
      Win32StartAddress: null
      ThreadListEntry: {ptr: 0xfffffa8001a3c060, type: _ETHREAD}

  - offset: 0xfffffa8001b45060
    type: _EPROCESS
    fields:
      UniqueProcessId: 512
      InheritedFromUniqueProcessId: 400
      ImageFileName: lsass.exe
      ActiveThreads: 1
      ObjectTable: null
      SessionId: 0
      IsWow64: false
      CreateTime: {win_time: 1336466490}
      ExitTime: {win_time: 0}
      Peb: null
      ThreadListHead: {ptr: 0xfffffa8001b46060, type: _ETHREAD}
      ActiveProcessLinks: {ptr: 0xfffff80002c4b940, type: _LIST_ENTRY}
  - offset: 0xfffffa8001b46060
    type: _ETHREAD
    fields:
      Cid: {struct: _CLIENT_ID, fields: {UniqueProcess: 512, UniqueThread: 520}}
      StartAddress: {addr: 0x77c70100}
      Win32StartAddress: {addr: 0x10000}
      ThreadListEntry: {ptr: 0, type: _ETHREAD}
address_spaces:
  - pid: 256
    modules:
      - name: smss
        base: 0x48000000
        size: 0x20000
      - name: ntdll
        base: 0x77c70000
        size: 0x1a9000
        exports:
          - {name: RtlUserThreadStart, address: 0x77c70100}
    ranges:
      - {virtual: 0x48000000, physical: 0x1a000000, size: 0x1000, data: 4d5a9000}
      - {virtual: 0x48001000, physical: 0x1a001000, size: 0x4, data: "c3"}
      - {virtual: 0x77c70000, physical: 0x2b000000, size: 0x2, data: ""}
  - pid: 512
    modules:
      - name: ntdll
        base: 0x77c70000
        size: 0x1a9000
        exports:
          - {name: RtlUserThreadStart, address: 0x77c70100}
    ranges:
      - {virtual: 0x1000000, physical: 0x3c000000, size: 0x2, data: cafe}
`

// Process offsets in Snapshot.
const (
	SystemOffset = 0xfffffa8000c9e040
	SmssOffset   = 0xfffffa8001a3b060
	LsassOffset  = 0xfffffa8001b45060
)

// LoadImage parses Snapshot.
func LoadImage(t *testing.T) *image.Image {
	t.Helper()
	img, err := image.Parse([]byte(Snapshot), image.Options{})
	require.NoError(t, err)
	return img
}
